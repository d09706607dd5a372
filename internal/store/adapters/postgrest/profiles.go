package postgrest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
)

type profileRepo struct {
	rc    *restClient
	table string
}

func (r *profileRepo) Insert(ctx context.Context, p repository.ProfileRecord) error {
	h := http.Header{"Prefer": {"return=minimal"}}
	if err := r.rc.do(ctx, http.MethodPost, url.PathEscape(r.table), nil, h, p.Row(), nil); err != nil {
		return fmt.Errorf("postgrest: insert profile: %w", err)
	}
	return nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*repository.ProfileRecord, error) {
	q := url.Values{
		"email":  {"eq." + email},
		"select": {"*"},
		"limit":  {"1"},
	}
	var rows []map[string]any
	if err := r.rc.do(ctx, http.MethodGet, url.PathEscape(r.table), q, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("postgrest: get profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, repository.ErrNotFound
	}
	return repository.ProfileFromRow(rows[0]), nil
}

// DeleteByEmail pide la representación para saber si se borró algo.
func (r *profileRepo) DeleteByEmail(ctx context.Context, email string) error {
	q := url.Values{"email": {"eq." + email}}
	h := http.Header{"Prefer": {"return=representation"}}
	var rows []map[string]any
	if err := r.rc.do(ctx, http.MethodDelete, url.PathEscape(r.table), q, h, nil, &rows); err != nil {
		return fmt.Errorf("postgrest: delete profile: %w", err)
	}
	if len(rows) == 0 {
		return repository.ErrNotFound
	}
	return nil
}
