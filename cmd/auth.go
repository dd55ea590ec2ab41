package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/musicx/internal/formatter"
	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/services"
	"github.com/desertthunder/musicx/internal/shared"
	"github.com/urfave/cli/v3"
)

// saveSession stores the session of a successful login or registration.
func (r *Runner) saveSession(result *models.AuthResult) (*models.Session, error) {
	store, err := r.storage()
	if err != nil {
		return nil, err
	}

	session := services.NewSession(result, time.Now())
	if err := store.SaveSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// AuthLogin logs in and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	creds := models.Credentials{UsernameOrEmail: cmd.String("user"), Password: cmd.String("password")}
	r.logger.Info("logging in", "user", creds.UsernameOrEmail)

	result, err := r.client.Login(ctx, creds)
	if err != nil {
		return err
	}

	session, err := r.saveSession(result)
	if err != nil {
		return err
	}

	r.writePlain("✓ Logged in as %s\n", session.User.Username)
	if !session.ExpiresAt.IsZero() {
		r.writePlain("Session expires %s\n", session.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// AuthRegister creates an account and stores the returned session.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	reg := models.Registration{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
		FullName: cmd.String("full-name"),
	}
	r.logger.Info("registering", "username", reg.Username)

	result, err := r.client.Register(ctx, reg)
	if err != nil {
		return err
	}
	if result.Token == "" {
		return r.writePlain("✓ Account %s created, log in with 'musicx auth login'\n", reg.Username)
	}

	session, err := r.saveSession(result)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Welcome, %s! You are logged in.\n", session.User.Username)
}

// AuthLogout notifies the backend and always clears the local session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	store, err := r.storage()
	if err != nil {
		return err
	}

	session, err := store.Session()
	if err == nil {
		if err := r.client.Logout(ctx, session.User.ID); err != nil {
			r.logger.Warn("server logout failed", "error", err)
		}
	}

	if err := store.ClearSession(); err != nil {
		return err
	}
	return r.writePlain("✓ Logged out\n")
}

// AuthWhoami shows the logged in user, refreshed from the server when it is reachable.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	user := session.User
	if fresh, err := r.client.CurrentUser(ctx, user.ID); err == nil {
		user = *fresh
	} else {
		r.logger.Warn("could not refresh user, showing stored session", "error", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, cmd.Bool("pretty"))
	}
	r.writePlain("%s\n", formatter.UserDetails(user))
	if !session.ExpiresAt.IsZero() {
		r.writePlain("Session expires %s\n", session.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// AuthStatus checks the API health endpoint and reports the stored session.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("checking auth status", "api", r.client.BaseURL())

	health, err := r.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	r.writePlain("✓ Service is healthy\n")
	r.writePlain("API: %s\n", r.client.BaseURL())
	if health != "" {
		r.writePlain("Status: %s\n", health)
	}

	store, err := r.storage()
	if err != nil {
		return err
	}
	session, err := store.Session()
	switch {
	case err == nil:
		r.writePlain("Authentication: ✓ Logged in as %s\n", session.User.Username)
	case errors.Is(err, shared.ErrTokenExpired):
		r.writePlain("Authentication: ✗ Session expired\n")
	default:
		r.writePlain("Authentication: ✗ Not logged in\n")
	}
	return nil
}

// AuthImport stores the bearer token of a request copied as cURL from the browser client.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}
	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var req *shared.CurlRequest
	var err error
	if curlFile != "" {
		if req, err = shared.ParseCurlFile(curlFile); err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		if req, err = shared.ParseCurlCommand(curlCmd); err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
	}

	token, err := req.BearerToken()
	if err != nil {
		return err
	}

	result := &models.AuthResult{Token: token, User: models.User{ID: req.UserID()}}
	session := services.NewSession(result, time.Now())
	if !session.Valid(time.Now()) {
		return fmt.Errorf("%w: the copied token has already expired", shared.ErrTokenExpired)
	}

	if base := req.BaseURL(); base != "" && !strings.EqualFold(base, strings.TrimRight(r.client.BaseURL(), "/")) {
		r.logger.Warn("token was issued by a different server", "curl", base, "api", r.client.BaseURL())
	}

	store, err := r.storage()
	if err != nil {
		return err
	}
	if err := store.SaveSession(session); err != nil {
		return err
	}

	name := session.User.Username
	if name == "" {
		name = "unknown user"
	}
	r.writePlain("✓ Session imported for %s\n", name)
	if session.User.ID == 0 {
		r.writePlain("No X-User-Id header found; playlist commands need one, prefer 'musicx auth login'.\n")
	}
	return nil
}

// AuthForgot requests a password reset token.
func (r *Runner) AuthForgot(ctx context.Context, cmd *cli.Command) error {
	reset, err := r.client.RequestPasswordReset(ctx, cmd.StringArg("email"))
	if err != nil {
		return err
	}

	if reset.Message != "" {
		r.writePlain("%s\n", reset.Message)
	}
	if reset.Token == "" {
		return r.writePlain("Check %s for the reset instructions.\n", reset.Email)
	}

	r.writePlain("Reset token: %s\n", reset.Token)
	if reset.ExpiresIn != "" {
		r.writePlain("Expires in: %s\n", reset.ExpiresIn)
	}
	if cmd.Bool("copy") {
		if err := shared.CopyToClipboard(reset.Token); err != nil {
			r.logger.Warn("could not copy token", "error", err)
		} else {
			r.writePlain("✓ Token copied to clipboard\n")
		}
	}
	return r.writePlainln("Finish with: musicx auth reset --token %s --password <new> --confirm <new>", reset.Token)
}

// AuthVerify checks a reset token.
func (r *Runner) AuthVerify(ctx context.Context, cmd *cli.Command) error {
	status, err := r.client.VerifyResetToken(ctx, cmd.StringArg("token"))
	if err != nil {
		return err
	}
	if !status.Valid {
		return fmt.Errorf("%w: reset token is invalid or expired", shared.ErrInvalidInput)
	}

	r.writePlain("✓ Token is valid")
	if status.Email != "" {
		r.writePlain(" for %s", status.Email)
	}
	if status.ExpiresAt != "" {
		r.writePlain(" until %s", status.ExpiresAt)
	}
	return r.writePlain("\n")
}

// AuthReset sets a new password.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	err := r.client.ResetPassword(ctx, cmd.String("token"), cmd.String("password"), cmd.String("confirm"))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Password updated, log in with 'musicx auth login'\n")
}
