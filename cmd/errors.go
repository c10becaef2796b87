package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/habedi/hrgo/auth"
	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/hr"
	"github.com/habedi/hrgo/pkg/clierr"
)

const loginHint = "Run 'hrgo login' to sign in again."

// toCLIError maps library errors onto user-facing CLI errors.
func toCLIError(err error) *clierr.Error {
	var cliErr *clierr.Error
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var (
		timeoutErr *client.TimeoutError
		netErr     *client.NetworkError
		apiErr     *client.APIError
	)
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		return clierr.New(clierr.SessionExpired, "Your session has expired.", err).WithHint(loginHint)
	case errors.Is(err, auth.ErrNotLoggedIn):
		return clierr.New(clierr.Auth, "You are not logged in.", err).WithHint("Run 'hrgo login' first.")
	case errors.Is(err, hr.ErrNotFound):
		return clierr.New(clierr.NotFound, err.Error(), err)
	case errors.As(err, &timeoutErr):
		return clierr.New(clierr.Timeout, fmt.Sprintf("The server did not answer within %s.", timeoutErr.Timeout), err)
	case errors.As(err, &netErr):
		return clierr.New(clierr.Network, "Could not reach the server. Check your connection and the base URL.", err)
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return clierr.New(clierr.Auth, apiErr.Message, err).WithHint(loginHint)
		case http.StatusNotFound:
			return clierr.New(clierr.NotFound, apiErr.Message, err)
		}
		return clierr.New(clierr.API, fmt.Sprintf("The server rejected the request (%d): %s", apiErr.Status, apiErr.Message), err)
	case errors.Is(err, context.Canceled):
		return clierr.New(clierr.Internal, "Operation cancelled.", err)
	}
	return clierr.New(clierr.Internal, err.Error(), err)
}
