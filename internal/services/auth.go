package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/desertthunder/musicx/internal/models"
	"github.com/desertthunder/musicx/internal/shared"
	validator "github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password the backend accepts.
const MinPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)
	validate     = validator.New()
)

// ValidEmail applies the same loose check as the web forms.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// Login calls POST /api/auth/login.
//
// Wrong passwords (401) and unknown users (404) are reported as [shared.ErrAuthFailed].
func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	creds.UsernameOrEmail = strings.TrimSpace(creds.UsernameOrEmail)
	if err := validate.Struct(creds); err != nil {
		return nil, fmt.Errorf("%w: username/email and password are required", shared.ErrInvalidInput)
	}

	req, err := c.request(ctx, authNone)
	if err != nil {
		return nil, err
	}

	var result models.AuthResult
	req.SetBody(creds)
	if err := c.do(req, http.MethodPost, "/api/auth/login", &result); err != nil {
		switch StatusCode(err) {
		case http.StatusUnauthorized, http.StatusNotFound:
			return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
		}
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("%w: no token in login response", shared.ErrAuthFailed)
	}
	return &result, nil
}

// Register calls POST /api/auth/register. The response logs the new user in.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := validate.Struct(reg); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrInvalidInput, registrationProblem(err))
	}

	req, err := c.request(ctx, authNone)
	if err != nil {
		return nil, err
	}

	var result models.AuthResult
	req.SetBody(reg)
	if err := c.do(req, http.MethodPost, "/api/auth/register", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func registrationProblem(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	switch fe := verrs[0]; fe.Field() {
	case "Username":
		return "username must be 3 to 50 characters"
	case "Email":
		return "email address is invalid"
	case "Password":
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	default:
		return fe.Error()
	}
}

// CurrentUser calls GET /api/auth/me with the X-User-Id header.
func (c *Client) CurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, shared.ErrNotAuthenticated
	}

	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var user models.User
	req.SetHeader("X-User-Id", id64(userID))
	if err := c.do(req, http.MethodGet, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout calls POST /api/auth/logout with the X-User-Id header.
func (c *Client) Logout(ctx context.Context, userID int64) error {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return err
	}

	if userID > 0 {
		req.SetHeader("X-User-Id", id64(userID))
	}
	return c.do(req.SetBody(map[string]any{}), http.MethodPost, "/api/auth/logout", nil)
}

// RequestPasswordReset calls POST /api/auth/forgot-password?email=.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*models.ResetRequest, error) {
	email = strings.TrimSpace(email)
	if !ValidEmail(email) {
		return nil, fmt.Errorf("%w: please enter a valid email address", shared.ErrInvalidInput)
	}

	req, err := c.request(ctx, authNone)
	if err != nil {
		return nil, err
	}

	var reset models.ResetRequest
	req.SetQueryParam("email", email)
	if err := c.do(req, http.MethodPost, "/api/auth/forgot-password", &reset); err != nil {
		return nil, err
	}
	if reset.Email == "" {
		reset.Email = email
	}
	return &reset, nil
}

// VerifyResetToken calls GET /api/auth/verify-reset-token/{token}.
func (c *Client) VerifyResetToken(ctx context.Context, token string) (*models.ResetTokenStatus, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: reset token", shared.ErrMissingArgument)
	}

	req, err := c.request(ctx, authNone)
	if err != nil {
		return nil, err
	}

	var status models.ResetTokenStatus
	req.SetPathParam("token", token)
	if err := c.do(req, http.MethodGet, "/api/auth/verify-reset-token/{token}", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ResetPassword verifies token and then calls POST /api/auth/reset-password.
func (c *Client) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", shared.ErrInvalidInput, MinPasswordLength)
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", shared.ErrInvalidInput)
	}

	status, err := c.VerifyResetToken(ctx, token)
	if err != nil {
		return err
	}
	if !status.Valid {
		return fmt.Errorf("%w: reset token is invalid or expired", shared.ErrInvalidInput)
	}

	req, err := c.request(ctx, authNone)
	if err != nil {
		return err
	}

	req.SetQueryParams(map[string]string{
		"token":           strings.TrimSpace(token),
		"newPassword":     password,
		"confirmPassword": confirm,
	})
	return c.do(req, http.MethodPost, "/api/auth/reset-password", nil)
}

// AppStats calls GET /api/auth/stats (unenveloped).
func (c *Client) AppStats(ctx context.Context) (*models.AppStats, error) {
	req, err := c.request(ctx, authOptional)
	if err != nil {
		return nil, err
	}

	var stats models.AppStats
	if err := c.do(req, http.MethodGet, "/api/auth/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health calls GET /api/auth/health and returns its body text.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := c.request(ctx, authNone)
	if err != nil {
		return "", err
	}

	resp, err := c.execute(req, http.MethodGet, "/api/auth/health")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.String()), nil
}

// AdminStats calls GET /api/admin/stats with the bearer token.
//
// A 403 means the user is not an admin.
func (c *Client) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	req, err := c.request(ctx, authRequired)
	if err != nil {
		return nil, err
	}

	var stats models.AdminStats
	if err := c.do(req, http.MethodGet, "/api/admin/stats", &stats); err != nil {
		if errors.Is(err, shared.ErrForbidden) {
			return nil, fmt.Errorf("access denied, admin only: %w", err)
		}
		return nil, err
	}
	return &stats, nil
}
