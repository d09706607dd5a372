package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
	"github.com/dropDatabas3/provisioner/internal/observability/logger"
	"github.com/dropDatabas3/provisioner/internal/security/password"
)

// ─── Fakes ───

type fakeIdentity struct {
	createErr error
	deleteErr error
	magicErr  error
	nextID    string

	created []repository.AccountCreationRequest
	deleted []string
	links   []repository.MagicLinkRequest
	// accounts vivas por ID
	accounts map[string]string
}

func newFakeIdentity(id string) *fakeIdentity {
	return &fakeIdentity{nextID: id, accounts: map[string]string{}}
}

func (f *fakeIdentity) CreateUser(ctx context.Context, req repository.AccountCreationRequest) (*repository.ProvisionedUser, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.accounts[f.nextID] = req.Email
	return &repository.ProvisionedUser{ID: f.nextID, Email: req.Email, UserMetadata: req.UserMetadata}, nil
}

func (f *fakeIdentity) DeleteUser(ctx context.Context, userID string) error {
	f.deleted = append(f.deleted, userID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.accounts[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.accounts, userID)
	return nil
}

func (f *fakeIdentity) SendMagicLink(ctx context.Context, req repository.MagicLinkRequest) error {
	f.links = append(f.links, req)
	return f.magicErr
}

type fakeProfiles struct {
	insertErr error
	deleteErr error
	rows      map[string]map[string]any // por email
	inserts   []repository.ProfileRecord
	// calls registra el orden de operaciones para verificar secuencias.
	calls *[]string
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{rows: map[string]map[string]any{}}
}

func (f *fakeProfiles) Insert(ctx context.Context, p repository.ProfileRecord) error {
	f.inserts = append(f.inserts, p)
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows[p.Email] = p.Row()
	return nil
}

func (f *fakeProfiles) GetByEmail(ctx context.Context, email string) (*repository.ProfileRecord, error) {
	row, ok := f.rows[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return repository.ProfileFromRow(row), nil
}

func (f *fakeProfiles) DeleteByEmail(ctx context.Context, email string) error {
	if f.calls != nil {
		*f.calls = append(*f.calls, "profile")
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.rows[email]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, email)
	return nil
}

// orderedIdentity registra el DeleteUser en la misma secuencia que el repo.
type orderedIdentity struct {
	*fakeIdentity
	calls *[]string
}

func (o orderedIdentity) DeleteUser(ctx context.Context, userID string) error {
	*o.calls = append(*o.calls, "account")
	return o.fakeIdentity.DeleteUser(ctx, userID)
}

func adminAttrs() ProfileAttributes {
	return ProfileAttributes{
		AttrUserType:  "admin",
		AttrFirstName: "System",
		AttrLastName:  "Administrator",
	}
}

func observedCtx() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logger.ToContext(context.Background(), zap.New(core)), logs
}

// ─── CreateAdminUser ───

func TestCreateAdminUser_Success(t *testing.T) {
	idp := newFakeIdentity("u-1")
	profiles := newFakeProfiles()
	p := New(Deps{Identity: idp, Profiles: profiles})
	ctx, logs := observedCtx()

	user, err := p.CreateAdminUser(ctx, "admin@school.com", "SecurePassword123!", adminAttrs())
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)

	require.Len(t, idp.created, 1)
	req := idp.created[0]
	require.Equal(t, "admin@school.com", req.Email)
	require.Equal(t, "SecurePassword123!", req.Password)
	require.True(t, req.EmailConfirm)
	require.Equal(t, map[string]any{
		"user_type": "admin", "first_name": "System", "last_name": "Administrator",
	}, req.UserMetadata)

	require.Len(t, profiles.inserts, 1)
	require.Equal(t, user.ID, profiles.inserts[0].ID)
	require.Equal(t, map[string]any{
		"id":         "u-1",
		"email":      "admin@school.com",
		"user_type":  "admin",
		"first_name": "System",
		"last_name":  "Administrator",
	}, profiles.inserts[0].Row())

	entries := logs.FilterMessage("admin user created").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	require.Equal(t, "admin@school.com", fields["email"])
	require.Equal(t, "u-1", fields["user_id"])
}

func TestCreateAdminUser_ExtraAttributesOnlyInRow(t *testing.T) {
	idp := newFakeIdentity("u-2")
	profiles := newFakeProfiles()
	p := New(Deps{Identity: idp, Profiles: profiles})

	attrs := adminAttrs()
	attrs["school_id"] = "s-42"
	_, err := p.CreateAdminUser(context.Background(), "  Admin@School.com ", "pw", attrs)
	require.NoError(t, err)

	require.Len(t, idp.created[0].UserMetadata, 3)
	require.NotContains(t, idp.created[0].UserMetadata, "school_id")
	row := profiles.inserts[0].Row()
	require.Equal(t, "s-42", row["school_id"])
	require.Equal(t, "admin@school.com", row["email"])
}

func TestCreateAdminUser_ProviderRejection(t *testing.T) {
	idp := newFakeIdentity("u-1")
	idp.createErr = errors.New("email already registered")
	profiles := newFakeProfiles()
	p := New(Deps{Identity: idp, Profiles: profiles})
	ctx, logs := observedCtx()

	user, err := p.CreateAdminUser(ctx, "admin@school.com", "SecurePassword123!", adminAttrs())
	require.Nil(t, user)
	require.EqualError(t, err, "email already registered")

	var accErr *AccountCreationError
	require.ErrorAs(t, err, &accErr)
	require.Equal(t, "admin@school.com", accErr.Email)
	require.ErrorIs(t, err, idp.createErr)

	require.Empty(t, profiles.inserts)
	require.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestCreateAdminUser_ProfileInsertFailureKeepsAccount(t *testing.T) {
	idp := newFakeIdentity("u-9")
	profiles := newFakeProfiles()
	profiles.insertErr = repository.ErrConflict
	p := New(Deps{Identity: idp, Profiles: profiles})

	user, err := p.CreateAdminUser(context.Background(), "admin@school.com", "pw", adminAttrs())
	require.Nil(t, user)

	var insErr *ProfileInsertError
	require.ErrorAs(t, err, &insErr)
	require.Equal(t, "u-9", insErr.UserID)
	require.ErrorIs(t, err, repository.ErrConflict)
	require.Contains(t, err.Error(), "u-9")

	// sin rollback: la cuenta sigue en el provider
	require.Contains(t, idp.accounts, "u-9")
	require.Empty(t, idp.deleted)
}

func TestCreateAdminUser_Validation(t *testing.T) {
	cases := []struct {
		name   string
		email  string
		pwd    string
		attrs  func() ProfileAttributes
		field  string
		reason string
	}{
		{"empty email", " ", "pw", adminAttrs, "email", "required"},
		{"empty password", "a@b.c", "", adminAttrs, "password", "required"},
		{"missing user_type", "a@b.c", "pw", func() ProfileAttributes {
			a := adminAttrs()
			delete(a, AttrUserType)
			return a
		}, "user_type", "required"},
		{"blank first_name", "a@b.c", "pw", func() ProfileAttributes {
			a := adminAttrs()
			a[AttrFirstName] = "  "
			return a
		}, "first_name", "required"},
		{"non string last_name", "a@b.c", "pw", func() ProfileAttributes {
			a := adminAttrs()
			a[AttrLastName] = 7
			return a
		}, "last_name", "must_be_string"},
		{"reserved id", "a@b.c", "pw", func() ProfileAttributes {
			a := adminAttrs()
			a["id"] = "forged"
			return a
		}, "id", "reserved"},
		{"invalid attribute name", "a@b.c", "pw", func() ProfileAttributes {
			a := adminAttrs()
			a["School-ID"] = "s-1"
			return a
		}, "School-ID", "invalid_name"},
		{"reserved email", "a@b.c", "pw", func() ProfileAttributes {
			a := adminAttrs()
			a["email"] = "other@b.c"
			return a
		}, "email", "reserved"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			idp := newFakeIdentity("u-1")
			profiles := newFakeProfiles()
			p := New(Deps{Identity: idp, Profiles: profiles})

			_, err := p.CreateAdminUser(context.Background(), tc.email, tc.pwd, tc.attrs())
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, tc.field, vErr.Field)
			require.Contains(t, vErr.Reasons, tc.reason)
			require.ErrorIs(t, err, repository.ErrInvalidInput)
			require.Empty(t, idp.created)
			require.Empty(t, profiles.inserts)
		})
	}
}

func TestCreateAdminUser_PasswordPolicy(t *testing.T) {
	idp := newFakeIdentity("u-1")
	p := New(Deps{
		Identity: idp,
		Profiles: newFakeProfiles(),
		Policy:   password.Policy{MinLength: 12, RequireDigit: true},
	})

	_, err := p.CreateAdminUser(context.Background(), "a@b.c", "short", adminAttrs())
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "password", vErr.Field)
	require.ElementsMatch(t, []string{"too_short", "missing_digit"}, vErr.Reasons)
	require.Empty(t, idp.created)

	_, err = p.CreateAdminUser(context.Background(), "a@b.c", "SecurePassword123!", adminAttrs())
	require.NoError(t, err)
}

// ─── LookupProfile ───

func TestLookupProfile(t *testing.T) {
	profiles := newFakeProfiles()
	profiles.rows["admin@school.com"] = map[string]any{"id": "u-1", "email": "admin@school.com", "user_type": "admin"}
	p := New(Deps{Identity: newFakeIdentity(""), Profiles: profiles})

	rec, err := p.LookupProfile(context.Background(), "ADMIN@school.com")
	require.NoError(t, err)
	require.Equal(t, "u-1", rec.ID)

	_, err = p.LookupProfile(context.Background(), "nobody@school.com")
	require.True(t, repository.IsNotFound(err))

	_, err = p.LookupProfile(context.Background(), "")
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

// ─── RemoveProfile ───

func TestRemoveProfile_PurgeDeletesProfileBeforeAccount(t *testing.T) {
	var calls []string
	idp := newFakeIdentity("u-1")
	profiles := newFakeProfiles()
	profiles.calls = &calls
	p := New(Deps{Identity: orderedIdentity{fakeIdentity: idp, calls: &calls}, Profiles: profiles})

	_, err := p.CreateAdminUser(context.Background(), "admin@school.com", "pw", adminAttrs())
	require.NoError(t, err)

	rec, err := p.RemoveProfile(context.Background(), "admin@school.com", true)
	require.NoError(t, err)
	require.Equal(t, "u-1", rec.ID)
	require.Equal(t, []string{"profile", "account"}, calls)
	require.Empty(t, profiles.rows)
	require.Empty(t, idp.accounts)
}

func TestRemoveProfile_WithoutPurgeKeepsAccount(t *testing.T) {
	idp := newFakeIdentity("u-1")
	profiles := newFakeProfiles()
	p := New(Deps{Identity: idp, Profiles: profiles})
	ctx, logs := observedCtx()

	_, err := p.CreateAdminUser(ctx, "admin@school.com", "pw", adminAttrs())
	require.NoError(t, err)

	_, err = p.RemoveProfile(ctx, "admin@school.com", false)
	require.NoError(t, err)
	require.Empty(t, idp.deleted)
	require.Contains(t, idp.accounts, "u-1")
	require.Equal(t, 1, logs.FilterMessage("profile removed; provider account kept").Len())
}

func TestRemoveProfile_NotFound(t *testing.T) {
	idp := newFakeIdentity("")
	p := New(Deps{Identity: idp, Profiles: newFakeProfiles()})

	_, err := p.RemoveProfile(context.Background(), "nobody@school.com", true)
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Empty(t, idp.deleted)
}

func TestRemoveProfile_DeleteFailureSkipsAccount(t *testing.T) {
	idp := newFakeIdentity("u-1")
	profiles := newFakeProfiles()
	p := New(Deps{Identity: idp, Profiles: profiles})
	_, err := p.CreateAdminUser(context.Background(), "admin@school.com", "pw", adminAttrs())
	require.NoError(t, err)

	profiles.deleteErr = errors.New("permission denied")
	_, err = p.RemoveProfile(context.Background(), "admin@school.com", true)
	require.ErrorContains(t, err, "delete profile: permission denied")
	require.Empty(t, idp.deleted)
}

func TestRemoveProfile_AccountDeleteFailure(t *testing.T) {
	idp := newFakeIdentity("u-1")
	profiles := newFakeProfiles()
	p := New(Deps{Identity: idp, Profiles: profiles})
	_, err := p.CreateAdminUser(context.Background(), "admin@school.com", "pw", adminAttrs())
	require.NoError(t, err)

	idp.deleteErr = repository.ErrUnauthorized
	rec, err := p.RemoveProfile(context.Background(), "admin@school.com", true)
	require.NotNil(t, rec)
	require.ErrorIs(t, err, repository.ErrUnauthorized)
	require.ErrorContains(t, err, "account u-1 remains")
	require.Empty(t, profiles.rows)
}

// ─── SendMagicLink ───

func TestSendMagicLink(t *testing.T) {
	idp := newFakeIdentity("")
	p := New(Deps{Identity: idp, Profiles: newFakeProfiles()})

	err := p.SendMagicLink(context.Background(), "Admin@School.com", " https://app.example.com/welcome ", true)
	require.NoError(t, err)
	require.Equal(t, []repository.MagicLinkRequest{{
		Email:      "admin@school.com",
		RedirectTo: "https://app.example.com/welcome",
		CreateUser: true,
	}}, idp.links)

	idp.magicErr = errors.New("Email rate limit exceeded")
	err = p.SendMagicLink(context.Background(), "admin@school.com", "", false)
	require.EqualError(t, err, "Email rate limit exceeded")

	err = p.SendMagicLink(context.Background(), "", "", false)
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}
