// Package api implements the outbound TVET-MIS backend port over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tvet-mis/console/internal/domain/privilege"
	"github.com/tvet-mis/console/internal/obs"
	"github.com/tvet-mis/console/internal/port/outbound"
)

// Client talks to the TVET-MIS server API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource func() string
	logger      *slog.Logger
	metrics     *obs.Metrics
}

var _ outbound.Backend = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client (tests, custom transports).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMetrics records request counts and durations on the given metrics.
func WithMetrics(m *obs.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a backend client. tokenSource supplies the bearer
// token per request; it returns "" when no session is held, in which
// case the Authorization header is omitted.
func NewClient(baseURL string, tokenSource func() string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		tokenSource: tokenSource,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// privilegeRecord mirrors the server's privilege payload.
type privilegeRecord struct {
	ID            int64  `json:"id"`
	DisplayOrder  int    `json:"disPlayOrder"`
	Display       bool   `json:"display"`
	ParentID      *int64 `json:"parentId"`
	PrivilegeName string `json:"privilegeName"`
	RouteName     string `json:"routeName"`
	Icon          string `json:"icon"`
}

func (r privilegeRecord) toDomain() privilege.Privilege {
	return privilege.Privilege{
		ID:           r.ID,
		ParentID:     r.ParentID,
		DisplayOrder: r.DisplayOrder,
		IsDisplay:    r.Display,
		Name:         r.PrivilegeName,
		RoutePath:    r.RouteName,
		Icon:         r.Icon,
	}
}

func toDomainList(records []privilegeRecord) []privilege.Privilege {
	list := make([]privilege.Privilege, 0, len(records))
	for _, r := range records {
		list = append(list, r.toDomain())
	}
	return list
}

// Authenticate exchanges credentials for a token bundle.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*outbound.AuthResult, error) {
	body := map[string]string{"username": username, "password": password}
	var result outbound.AuthResult
	if err := c.doRequest(ctx, "authenticate", http.MethodPost, "/api/v1/auth/authenticate", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MenuPrivileges fetches the navigation privileges granted to a role.
func (c *Client) MenuPrivileges(ctx context.Context, roleID string) ([]privilege.Privilege, error) {
	var records []privilegeRecord
	path := "/api/v1/auth/privilege/menu-lists/" + roleID
	if err := c.doRequest(ctx, "menu_privileges", http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// ParentPrivileges lists every top-level privilege definition.
func (c *Client) ParentPrivileges(ctx context.Context) ([]privilege.Privilege, error) {
	var records []privilegeRecord
	if err := c.doRequest(ctx, "parent_privileges", http.MethodGet, "/api/v1/auth/privilege/parent-privileges-lists", nil, &records); err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// ChildPrivileges lists the child privilege definitions of a parent.
func (c *Client) ChildPrivileges(ctx context.Context, parentID int64) ([]privilege.Privilege, error) {
	var records []privilegeRecord
	path := fmt.Sprintf("/api/v1/auth/privilege/child-privileges-lists/%d", parentID)
	if err := c.doRequest(ctx, "child_privileges", http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	return toDomainList(records), nil
}

// UserNameCurrentRole fetches the display identity for a user.
func (c *Client) UserNameCurrentRole(ctx context.Context, userID string) (*outbound.ProfileResult, error) {
	var result outbound.ProfileResult
	path := "/api/v1/user/management/user-profile/get-username-current-role/" + userID
	if err := c.doRequest(ctx, "username_current_role", http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AssociatedRoles lists the roles a user can switch between.
func (c *Client) AssociatedRoles(ctx context.Context, userID string) ([]outbound.RoleOption, error) {
	var result []outbound.RoleOption
	path := "/api/v1/user/management/user-profile/get-user-associated-roles/" + userID
	if err := c.doRequest(ctx, "associated_roles", http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SwitchRole asks the server to move the account's current role.
// The response body is not read: a successful switch ends the session
// client-side and the user logs in again.
func (c *Client) SwitchRole(ctx context.Context, userID, roleID string) error {
	body := map[string]string{"userId": userID, "switchedRoleId": roleID}
	return c.doRequest(ctx, "switch_role", http.MethodPost, "/api/v1/user/management/user-profile/update-switch-role", body, nil)
}

// ChangePassword changes the logged-in user's password.
func (c *Client) ChangePassword(ctx context.Context, req outbound.ChangePasswordRequest) error {
	return c.doRequest(ctx, "change_password", http.MethodPost, "/api/v1/user/password/auth-password/changePassword", req, nil)
}

// ForgotPassword starts a password reset for the given email.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.doRequest(ctx, "forgot_password", http.MethodPost, "/api/v1/auth/public-password/forgot-password", body, nil)
}

// ResetPassword completes a password reset with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, req outbound.ResetPasswordRequest) error {
	return c.doRequest(ctx, "reset_password", http.MethodPost, "/api/v1/auth/public-password/reset-password", req, nil)
}

// errorBody is the server's error payload shape.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// doRequest performs one HTTP request against the server API.
// Transport failures map to *NetworkError, non-2xx responses to
// *APIError. The X-Request-ID header correlates client and server logs.
func (c *Client) doRequest(ctx context.Context, operation, method, path string, body, result any) error {
	start := time.Now()
	requestID := uuid.NewString()

	err := c.do(ctx, requestID, method, path, body, result)

	if c.metrics != nil {
		status := "ok"
		switch {
		case err == nil:
		case isAPIError(err):
			status = "api_error"
		default:
			status = "network_error"
		}
		c.metrics.APIRequestsTotal.WithLabelValues(operation, status).Inc()
		c.metrics.APIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		c.logger.Debug("api request failed",
			"operation", operation, "request_id", requestID, "error", err)
	}
	return err
}

func (c *Client) do(ctx context.Context, requestID, method, path string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-Request-ID", requestID)
	if token := c.tokenSource(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &NetworkError{Cause: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &NetworkError{Cause: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := &APIError{Status: httpResp.StatusCode, RequestID: requestID}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			if eb.Message != "" {
				apiErr.Message = eb.Message
			} else {
				apiErr.Message = eb.Error
			}
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func isAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
