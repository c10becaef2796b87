package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/pkg/clierr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// requestCmds returns the raw get, post, put and delete commands, which print
// the response envelope's data as indented JSON or YAML.
func requestCmds(a *app) []*cobra.Command {
	return []*cobra.Command{
		requestCmd(a, http.MethodGet, false),
		requestCmd(a, http.MethodPost, true),
		requestCmd(a, http.MethodPut, true),
		requestCmd(a, http.MethodDelete, false),
	}
}

func requestCmd(a *app, method string, withBody bool) *cobra.Command {
	var queryPairs []string
	var data string
	var noAuth bool
	var output string

	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " <path>",
		Short: fmt.Sprintf("Send a raw %s request to the API", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return clierr.New(clierr.Validation, fmt.Sprintf("Invalid output format %q (must be json or yaml).", output), nil)
			}
			req := client.Request{Method: method, Path: args[0], NoAuth: noAuth}
			if !strings.HasPrefix(req.Path, "/") {
				req.Path = "/" + req.Path
			}

			q, err := parseQuery(queryPairs)
			if err != nil {
				return err
			}
			req.Query = q

			if data != "" {
				var body any
				if err := json.Unmarshal([]byte(data), &body); err != nil {
					return clierr.New(clierr.Validation, "The --data value is not valid JSON.", err)
				}
				req.Body = body
			}

			var s *session
			if noAuth {
				s, err = a.session()
			} else {
				s, err = a.authed(cmd.Context())
			}
			if err != nil {
				return err
			}

			env, err := s.client.Do(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printEnvelope(cmd, env, output)
		},
	}

	cmd.Flags().StringArrayVarP(&queryPairs, "query", "q", nil, "Query parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "Send the request without the bearer token")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format [json, yaml]")
	if withBody {
		cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	}
	return cmd
}

// parseQuery turns key=value pairs into a Query. Repeated keys become a list.
func parseQuery(pairs []string) (client.Query, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	multi := map[string][]string{}
	var order []string
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, clierr.New(clierr.Validation, fmt.Sprintf("Invalid query parameter %q, expected key=value.", p), nil)
		}
		if _, seen := multi[k]; !seen {
			order = append(order, k)
		}
		multi[k] = append(multi[k], v)
	}
	q := client.Query{}
	for _, k := range order {
		if vs := multi[k]; len(vs) == 1 {
			q[k] = vs[0]
		} else {
			q[k] = vs
		}
	}
	return q, nil
}

func printEnvelope(cmd *cobra.Command, env *client.Envelope, format string) error {
	if env == nil || !env.HasData() {
		if env != nil && env.Message != "" {
			fmt.Fprintln(cmd.OutOrStdout(), env.Message)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "OK (no data)")
		}
		return nil
	}
	if format == "yaml" {
		var v any
		if err := json.Unmarshal(env.Data, &v); err != nil {
			return clierr.New(clierr.Internal, "The server returned malformed JSON data.", err)
		}
		out, err := yaml.Marshal(v)
		if err != nil {
			return clierr.New(clierr.Internal, "Failed to render the response as YAML.", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, env.Data, "", "  "); err != nil {
		return clierr.New(clierr.Internal, "The server returned malformed JSON data.", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.String())
	return nil
}
