package api

import (
	"context"
	"fmt"
	"net/http"

	"ruangpulih/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type authResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// Login authenticates and stores the session cookie in the client's jar.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.Do(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: login response has no user", ErrDecode)
	}

	c.mu.Lock()
	c.user = resp.User
	c.mu.Unlock()

	c.logger.Info().Str("user_id", resp.User.ID).Str("role", resp.User.Role).Msg("logged in")
	return resp.User, nil
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if !models.IsValidRole(req.Role) {
		return nil, fmt.Errorf("invalid role %q", req.Role)
	}
	var resp authResponse
	if err := c.Do(ctx, http.MethodPost, "/register", req, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%w: register response has no user", ErrDecode)
	}
	return resp.User, nil
}

// Logout ends the session and drops cached reads made under it.
func (c *Client) Logout(ctx context.Context) error {
	err := c.Do(ctx, http.MethodPost, "/logout", nil, nil)

	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()

	if cacheErr := c.InvalidateCache(ctx, "/"); cacheErr != nil {
		c.logger.Warn().Err(cacheErr).Msg("failed to clear cache on logout")
	}
	return err
}

// CurrentUser returns the user of the last successful Login, or nil.
func (c *Client) CurrentUser() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}
