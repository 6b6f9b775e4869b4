package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spec-kit/forum-service/internal/domain"
	"github.com/spec-kit/forum-service/internal/profile"
)

// UserPage is one page of the admin user listing.
type UserPage struct {
	Items []domain.User `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// UpdateProfile sends a validated profile update for the token's owner.
func (c *Client) UpdateProfile(ctx context.Context, token string, update profile.Update) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, call{op: "update_profile", method: http.MethodPatch, path: "/users/me", token: token, body: update}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches a public user profile.
func (c *Client) GetUser(ctx context.Context, token, userID string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, call{op: "get_user", method: http.MethodGet, path: path("/users/%s", userID), token: token}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListExperts lists expert profiles, optionally narrowed to a category.
func (c *Client) ListExperts(ctx context.Context, token, category string) ([]domain.User, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}
	var users []domain.User
	err := c.do(ctx, call{op: "list_experts", method: http.MethodGet, path: "/experts", token: token, query: query}, &users)
	return users, err
}

// ListUsers returns a page of all accounts.
func (c *Client) ListUsers(ctx context.Context, token string, page, limit int) (*UserPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	var result UserPage
	err := c.do(ctx, call{op: "list_users", method: http.MethodGet, path: "/users", token: token, query: query}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateUserRole changes the role of an account.
func (c *Client) UpdateUserRole(ctx context.Context, token, userID string, role domain.Role) (*domain.User, error) {
	var user domain.User
	body := map[string]string{"role": role.String()}
	err := c.do(ctx, call{op: "update_user_role", method: http.MethodPatch, path: path("/users/%s/role", userID), token: token, body: body}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
