package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
)

const maxBodyBytes = 1 << 20

// Error es el cuerpo de error de PostgREST ({code, message, details, hint}).
type Error struct {
	Status  int
	Code    string
	Message string
	Details string
	Hint    string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return e.Message + " (" + e.Details + ")"
	}
	return e.Message
}

// Is mapea SQLSTATE/códigos PGRST a sentinels de repository.
func (e *Error) Is(target error) bool {
	switch target {
	case repository.ErrConflict:
		return e.Code == "23505" || e.Status == http.StatusConflict
	case repository.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden || e.Code == "42501"
	case repository.ErrInvalidInput:
		// columna o tabla inexistente en el schema cache
		switch e.Code {
		case "42703", "42P01", "PGRST204", "PGRST205":
			return true
		}
	}
	return false
}

type restClient struct {
	baseURL string // termina en /rest/v1/
	key     string
	schema  string
	http    *http.Client
}

// do ejecuta el request contra {baseURL}{path}. headers se agregan a los comunes.
func (c *restClient) do(ctx context.Context, method, path string, query url.Values, headers http.Header, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// Schemas distintos de public se eligen por header.
	if c.schema != "" && c.schema != "public" {
		if method == http.MethodGet || method == http.MethodHead {
			req.Header.Set("Accept-Profile", c.schema)
		} else {
			req.Header.Set("Content-Profile", c.schema)
		}
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseError(status int, body []byte) *Error {
	var eb struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
		Hint    string `json:"hint"`
	}
	_ = json.Unmarshal(body, &eb)
	msg := strings.TrimSpace(eb.Message)
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Status: status, Code: eb.Code, Message: msg, Details: eb.Details, Hint: eb.Hint}
}
