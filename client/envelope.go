package client

import (
	"bytes"
	"encoding/json"
)

// Envelope is the normalized form of the API's response wrapper.
//
// The server uses both "success" and "succeeded" for the same flag; either key
// sets Success. When neither key is present Success is true, since the HTTP
// status already indicated success. Data is nil when the key is absent or null.
type Envelope struct {
	Success bool
	Data    json.RawMessage
	Message string
}

// HasData reports whether the envelope carries a non-null payload.
func (e *Envelope) HasData() bool {
	return len(e.Data) > 0
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var raw struct {
		Success   *bool           `json:"success"`
		Succeeded *bool           `json:"succeeded"`
		Data      json.RawMessage `json:"data"`
		Message   string          `json:"message"`
		Error     string          `json:"error"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	e.Success = true
	switch {
	case raw.Success != nil:
		e.Success = *raw.Success
	case raw.Succeeded != nil:
		e.Success = *raw.Succeeded
	}

	e.Data = nil
	if d := bytes.TrimSpace(raw.Data); len(d) > 0 && !bytes.Equal(d, []byte("null")) {
		e.Data = d
	}

	e.Message = raw.Message
	if e.Message == "" {
		e.Message = raw.Error
	}
	return nil
}

// parseEnvelope tolerates empty bodies (204, empty 200) by returning an empty envelope.
func parseEnvelope(body []byte) (*Envelope, error) {
	env := &Envelope{Success: true}
	if len(bytes.TrimSpace(body)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(body, env); err != nil {
		return nil, err
	}
	return env, nil
}

// errorMessage extracts a server message from an error response body, if any.
func errorMessage(body []byte) string {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}
