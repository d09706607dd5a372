package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
)

type stubAdapter struct {
	name string
	err  error
	got  AdapterConfig
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Connect(ctx context.Context, cfg AdapterConfig) (Connection, error) {
	a.got = cfg
	if a.err != nil {
		return nil, a.err
	}
	return stubConn{name: a.name}, nil
}

type stubConn struct{ name string }

func (c stubConn) Name() string                           { return c.name }
func (c stubConn) Ping(ctx context.Context) error         { return nil }
func (c stubConn) Close() error                           { return nil }
func (c stubConn) Profiles() repository.ProfileRepository { return nil }

func TestRegistry(t *testing.T) {
	a := &stubAdapter{name: "stub-ok"}
	RegisterAdapter(a)
	RegisterAdapter(&stubAdapter{name: "stub-fail", err: errors.New("boom")})

	got, ok := GetAdapter("stub-ok")
	require.True(t, ok)
	require.Equal(t, a, got)
	require.Subset(t, ListAdapters(), []string{"stub-fail", "stub-ok"})

	conn, err := OpenAdapter(context.Background(), AdapterConfig{Name: "stub-ok", Table: "users"})
	require.NoError(t, err)
	require.Equal(t, "stub-ok", conn.Name())
	require.Equal(t, "users", a.got.Table)

	_, err = OpenAdapter(context.Background(), AdapterConfig{Name: "stub-fail"})
	require.EqualError(t, err, "boom")

	_, err = OpenAdapter(context.Background(), AdapterConfig{Name: "missing"})
	require.ErrorContains(t, err, `adapter: "missing" not registered`)

	require.Panics(t, func() { RegisterAdapter(&stubAdapter{name: "stub-ok"}) })
}
