package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/musicx/internal/services"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/urfave/cli/v3"
)

// apiClient returns the runner's client, or one sending the --token value instead of the stored session.
func (r *Runner) apiClient(cmd *cli.Command) *services.Client {
	token := cmd.String("token")
	if token == "" {
		return r.client
	}
	return services.NewClient(services.ClientConfig{
		BaseURL:    r.client.BaseURL(),
		Timeout:    r.config.API.Timeout,
		RateLimit:  r.config.API.RateLimit,
		Burst:      r.config.API.Burst,
		Tokens:     services.StaticToken(token),
		Logger:     r.logger,
		HTTPClient: r.httpClient,
	})
}

func (r *Runner) writeResponse(resp *services.APIResponse, pretty bool) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty)
	}
	r.output.Write(resp.Body)
	r.output.Write([]byte("\n"))
	return nil
}

// APIGet makes a direct GET request to the API
func (r *Runner) APIGet(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	r.logger.Info("GET request", "path", path)

	resp, err := r.apiClient(cmd).Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, !cmd.Bool("json"))
}

// APIPost makes a direct POST request to the API
func (r *Runner) APIPost(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	data := cmd.String("data")

	r.logger.Info("POST request", "path", path)

	var jsonTest any
	if err := json.Unmarshal([]byte(data), &jsonTest); err != nil {
		return fmt.Errorf("%w: data is not valid JSON: %v", shared.ErrInvalidInput, err)
	}

	resp, err := r.apiClient(cmd).Post(ctx, path, []byte(data))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return r.writeResponse(resp, true)
}
