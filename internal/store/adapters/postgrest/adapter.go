// Package postgrest implementa el adapter que escribe perfiles a través del
// REST API de Supabase (PostgREST) con la service key.
package postgrest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
	"github.com/dropDatabas3/provisioner/internal/store"
)

func init() {
	store.RegisterAdapter(&postgrestAdapter{})
}

const restPath = "/rest/v1/"

type postgrestAdapter struct{}

func (a *postgrestAdapter) Name() string { return "postgrest" }

// Connect no hace I/O: PostgREST es stateless. Usar Ping para verificar.
func (a *postgrestAdapter) Connect(ctx context.Context, cfg store.AdapterConfig) (store.Connection, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("postgrest: base url is required")
	}
	if cfg.Table == "" {
		return nil, errors.New("postgrest: table is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rc := &restClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/") + restPath,
		key:     cfg.ServiceKey,
		schema:  cfg.Schema,
		http:    &http.Client{Timeout: timeout},
	}
	return &restConnection{rc: rc, profiles: &profileRepo{rc: rc, table: cfg.Table}}, nil
}

type restConnection struct {
	rc       *restClient
	profiles *profileRepo
}

func (c *restConnection) Name() string { return "postgrest" }

// Ping pide el root del API (OpenAPI), que valida la key.
func (c *restConnection) Ping(ctx context.Context) error {
	if err := c.rc.do(ctx, http.MethodGet, "", nil, nil, nil, nil); err != nil {
		return fmt.Errorf("postgrest: ping: %w", err)
	}
	return nil
}

func (c *restConnection) Close() error {
	c.rc.http.CloseIdleConnections()
	return nil
}

func (c *restConnection) Profiles() repository.ProfileRepository { return c.profiles }
