package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cardsense/cardsense/internal/apperrors"
)

type User struct {
	ID        int64  `json:"id" example:"42"`
	Email     string `json:"email" example:"jane@example.com"`
	FirstName string `json:"first_name,omitempty" example:"Jane"`
	LastName  string `json:"last_name,omitempty" example:"Doe"`
}

type AuthResult struct {
	User User `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" example:"jane@example.com"`
	Password string `json:"password" example:"lkIB53@6O^Y"`
}

type RegisterRequest struct {
	Email           string `json:"email" example:"jane@example.com"`
	Password        string `json:"password" example:"lkIB53@6O^Y"`
	ConfirmPassword string `json:"confirmPassword" example:"lkIB53@6O^Y"`
	FirstName       string `json:"first_name,omitempty" example:"Jane"`
	LastName        string `json:"last_name,omitempty" example:"Doe"`
}

const loginCSRFMessage = "Session expired. Please try logging in again."

// LoginUser starts a session. On success the session cookie is held by the client's cookie jar.
func (c *Client) LoginUser(ctx context.Context, req LoginRequest) Response[AuthResult] {
	res := call(ctx, c, "/auth/login/", RequestOptions{Method: http.MethodPost, Body: req}, "log in", decodeAuth)
	if res.Error != nil && res.Error.Code == apperrors.ErrCodeCSRFError {
		res.Error.Message = loginCSRFMessage
	}
	return res
}

// RegisterUser creates an account. The backend logs the new user in.
func (c *Client) RegisterUser(ctx context.Context, req RegisterRequest) Response[AuthResult] {
	return call(ctx, c, "/auth/register/", RequestOptions{Method: http.MethodPost, Body: req}, "register", decodeAuth)
}

// CheckAuth returns the current user. Any non-2xx status means there is no usable session.
func (c *Client) CheckAuth(ctx context.Context) Response[AuthResult] {
	res := call(ctx, c, "/auth/me/", RequestOptions{}, "check authentication", decodeAuth)
	if res.Error != nil && res.Error.StatusCode != 0 && res.Error.Code != apperrors.ErrCodeInvalidResponse {
		res.Error.Code = apperrors.ErrCodeUnauthorized
		res.Error.Message = "Not authenticated"
	}
	return res
}

// Logout ends the session on the backend. The cached CSRF token is dropped whatever the outcome,
// Django rotates it on login and logout.
func (c *Client) Logout(ctx context.Context) Response[any] {
	res := call(ctx, c, "/auth/logout/", RequestOptions{Method: http.MethodPost}, "log out", decodeDeleted("Logged out successfully"))
	c.session.Invalidate()
	return res
}

// decodeAuth accepts {"success": true, "data": {"user": ...}}, an envelope whose data is the user,
// {"user": ...} and the bare user object. An envelope carrying no user is rejected.
func decodeAuth(res *RawResponse) (AuthResult, string, bool) {
	raw := parseBody(res.Body)
	obj := asObject(raw)
	if obj == nil {
		return AuthResult{}, "", false
	}

	var userRaw json.RawMessage
	switch d := asObject(obj["data"]); {
	case d != nil && isObject(d["user"]):
		userRaw = d["user"]
	case d != nil:
		userRaw = obj["data"]
	case isObject(obj["user"]):
		userRaw = obj["user"]
	case isEnvelope(obj):
		return AuthResult{}, "", false
	default:
		userRaw = raw
	}

	var user User
	if err := json.Unmarshal(userRaw, &user); err != nil {
		return AuthResult{}, "", false
	}
	return AuthResult{User: user}, envelopeMessage(obj), true
}
