package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akrishnanDG/migration-analyzer/internal/models"
)

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, reg models.RegisterRequest) (*models.User, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var user models.User
	err = c.do(ctx, request{
		op:          opRegister,
		method:      http.MethodPost,
		path:        "/auth/register",
		body:        body,
		contentType: "application/json",
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token and stores it
func (c *Client) Login(ctx context.Context, login models.LoginRequest) (*models.TokenResponse, error) {
	body, err := json.Marshal(login)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var token models.TokenResponse
	err = c.do(ctx, request{
		op:          opLogin,
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        body,
		contentType: "application/json",
	}, &token)
	if err != nil {
		return nil, err
	}

	if token.AccessToken == "" {
		return nil, &RequestError{Op: opLogin.name, StatusCode: http.StatusOK, Message: opLogin.fallback}
	}
	if err := c.creds.Set(token.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to store credentials: %w", err)
	}
	return &token, nil
}

// Me returns the user the current credential belongs to
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	err := c.do(ctx, request{
		op:            opMe,
		method:        http.MethodGet,
		path:          "/auth/me",
		authenticated: true,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
