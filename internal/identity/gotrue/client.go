// Package gotrue implementa repository.IdentityProvider contra el admin API
// de Supabase Auth (GoTrue).
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
	"github.com/dropDatabas3/provisioner/internal/observability/logger"
)

const (
	adminUsersPath = "/auth/v1/admin/users"
	otpPath        = "/auth/v1/otp"

	// maxBodyBytes acota lo que se lee de una respuesta.
	maxBodyBytes = 1 << 20
)

// Config del cliente.
type Config struct {
	// BaseURL del proyecto, ej: https://<ref>.supabase.co
	BaseURL string
	// ServiceKey se envía en apikey y Authorization.
	ServiceKey string
	Timeout    time.Duration
	// HTTPClient opcional (tests). Si es nil se crea uno con Timeout.
	HTTPClient *http.Client
}

// Client habla con el auth server usando la service key.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

var _ repository.IdentityProvider = (*Client)(nil)

// New crea el cliente. No hace ninguna llamada de red.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		key:     cfg.ServiceKey,
		http:    hc,
	}
}

type createUserBody struct {
	Email        string         `json:"email"`
	Password     string         `json:"password"`
	EmailConfirm bool           `json:"email_confirm"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

type userResponse struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
	CreatedAt        time.Time      `json:"created_at"`
}

// CreateUser crea una cuenta vía admin API.
// Los rechazos del provider vuelven como *APIError con el mensaje original.
func (c *Client) CreateUser(ctx context.Context, req repository.AccountCreationRequest) (*repository.ProvisionedUser, error) {
	body := createUserBody{
		Email:        req.Email,
		Password:     req.Password,
		EmailConfirm: req.EmailConfirm,
		UserMetadata: req.UserMetadata,
	}

	var ur userResponse
	if err := c.do(ctx, http.MethodPost, adminUsersPath, nil, body, &ur); err != nil {
		return nil, err
	}
	if ur.ID == "" {
		return nil, errors.New("gotrue: create user: response without id")
	}
	return &repository.ProvisionedUser{
		ID:               ur.ID,
		Email:            ur.Email,
		EmailConfirmedAt: ur.EmailConfirmedAt,
		UserMetadata:     ur.UserMetadata,
		CreatedAt:        ur.CreatedAt,
	}, nil
}

// DeleteUser elimina la cuenta. 404 se mapea a repository.ErrNotFound vía APIError.Is.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("gotrue: delete user: empty id: %w", repository.ErrInvalidInput)
	}
	return c.do(ctx, http.MethodDelete, adminUsersPath+"/"+url.PathEscape(userID), nil, nil, nil)
}

type otpBody struct {
	Email      string `json:"email"`
	CreateUser bool   `json:"create_user"`
}

// SendMagicLink pide al provider que envíe el link de login.
func (c *Client) SendMagicLink(ctx context.Context, req repository.MagicLinkRequest) error {
	var q url.Values
	if req.RedirectTo != "" {
		q = url.Values{"redirect_to": {req.RedirectTo}}
	}
	return c.do(ctx, http.MethodPost, otpPath, q, otpBody{Email: req.Email, CreateUser: req.CreateUser}, nil)
}

// do ejecuta el request y decodifica la respuesta en out (si no es nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gotrue: encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("gotrue: build request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gotrue: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("gotrue: read response: %w", err)
	}

	logger.From(ctx).Debug("identity provider call",
		logger.Component("gotrue"),
		zap.String("method", method),
		zap.String("path", path),
		logger.Status(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gotrue: decode response: %w", err)
	}
	return nil
}
