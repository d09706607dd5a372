// Package provision implementa el alta administrativa de usuarios: crea la
// cuenta en el identity provider y luego la fila de perfil con el mismo ID.
//
// Los dos pasos son secuenciales y no transaccionales. Si el perfil falla la
// cuenta queda creada y se reporta con ProfileInsertError.
package provision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
	"github.com/dropDatabas3/provisioner/internal/metrics"
	"github.com/dropDatabas3/provisioner/internal/observability/logger"
	"github.com/dropDatabas3/provisioner/internal/security/password"
	"github.com/dropDatabas3/provisioner/internal/validation"
)

// Atributos de perfil obligatorios. También son los únicos que viajan como
// user_metadata al provider.
const (
	AttrUserType  = "user_type"
	AttrFirstName = "first_name"
	AttrLastName  = "last_name"
)

var requiredAttrs = []string{AttrUserType, AttrFirstName, AttrLastName}

// Nombres de operación (label "op" en métricas y logs).
const (
	OpCreateAdminUser = "create_admin_user"
	OpLookupProfile   = "lookup_profile"
	OpRemoveProfile   = "remove_profile"
	OpSendMagicLink   = "send_magic_link"
)

// ProfileAttributes atributos del perfil que se espejan en la fila.
type ProfileAttributes map[string]any

// Deps contiene las dependencias del provisioner.
type Deps struct {
	Identity repository.IdentityProvider
	Profiles repository.ProfileRepository
	// Policy local opcional; el valor cero no valida nada.
	Policy password.Policy
}

// Provisioner orquesta identity provider y tabla de perfiles.
type Provisioner struct {
	deps Deps
}

// New crea el provisioner. Los clientes se inyectan ya construidos.
func New(deps Deps) *Provisioner {
	return &Provisioner{deps: deps}
}

// CreateAdminUser crea la cuenta con el email ya confirmado y después la fila
// de perfil {id, email, ...attrs}.
//
// Errores:
//   - *ValidationError: input inválido, no hubo llamadas remotas.
//   - *AccountCreationError: el provider rechazó la cuenta; mensaje original.
//   - *ProfileInsertError: la cuenta existe pero el perfil no.
func (p *Provisioner) CreateAdminUser(ctx context.Context, email, pwd string, attrs ProfileAttributes) (_ *repository.ProvisionedUser, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation(OpCreateAdminUser, err, time.Since(start)) }()

	log := logger.From(ctx).With(logger.Op(OpCreateAdminUser), logger.Layer("service"))

	email = normalizeEmail(email)
	if err := p.validateCreate(email, pwd, attrs); err != nil {
		log.Error("invalid input", logger.Email(email), logger.Err(err))
		return nil, err
	}

	// 1. Cuenta en el provider
	user, err := p.deps.Identity.CreateUser(ctx, repository.AccountCreationRequest{
		Email:        email,
		Password:     pwd,
		EmailConfirm: true,
		UserMetadata: map[string]any{
			AttrUserType:  attrs[AttrUserType],
			AttrFirstName: attrs[AttrFirstName],
			AttrLastName:  attrs[AttrLastName],
		},
	})
	if err != nil {
		log.Error("account creation failed", logger.Email(email), logger.Err(err))
		return nil, &AccountCreationError{Email: email, Err: err}
	}

	// 2. Perfil con el ID emitido por el provider
	rec := repository.ProfileRecord{
		ID:         user.ID,
		Email:      email,
		Attributes: map[string]any(attrs),
	}
	if err := p.deps.Profiles.Insert(ctx, rec); err != nil {
		log.Error("profile insert failed; account left in place",
			logger.Email(email), logger.UserID(user.ID), logger.Err(err))
		return nil, &ProfileInsertError{UserID: user.ID, Email: email, Err: err}
	}

	log.Info("admin user created",
		logger.Email(email),
		logger.UserID(user.ID),
		logger.UserType(fmt.Sprint(attrs[AttrUserType])),
	)
	return user, nil
}

// LookupProfile busca el perfil por email. repository.ErrNotFound si no existe.
func (p *Provisioner) LookupProfile(ctx context.Context, email string) (_ *repository.ProfileRecord, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation(OpLookupProfile, err, time.Since(start)) }()

	email = normalizeEmail(email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Reasons: []string{"required"}}
	}

	rec, err := p.deps.Profiles.GetByEmail(ctx, email)
	if err != nil {
		if !repository.IsNotFound(err) {
			logger.From(ctx).Error("profile lookup failed",
				logger.Op(OpLookupProfile), logger.Email(email), logger.Err(err))
		}
		return nil, err
	}
	return rec, nil
}

// RemoveProfile borra la fila de perfil y, con purgeAccount, después la cuenta
// del provider. Nunca borra la cuenta antes que el perfil.
// Retorna el perfil borrado.
func (p *Provisioner) RemoveProfile(ctx context.Context, email string, purgeAccount bool) (_ *repository.ProfileRecord, err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation(OpRemoveProfile, err, time.Since(start)) }()

	log := logger.From(ctx).With(logger.Op(OpRemoveProfile), logger.Layer("service"))

	email = normalizeEmail(email)
	if email == "" {
		return nil, &ValidationError{Field: "email", Reasons: []string{"required"}}
	}

	rec, err := p.deps.Profiles.GetByEmail(ctx, email)
	if err != nil {
		if !repository.IsNotFound(err) {
			log.Error("profile lookup failed", logger.Email(email), logger.Err(err))
		}
		return nil, err
	}

	if err := p.deps.Profiles.DeleteByEmail(ctx, email); err != nil {
		log.Error("profile delete failed", logger.Email(email), logger.Err(err))
		return nil, fmt.Errorf("delete profile: %w", err)
	}

	if !purgeAccount {
		log.Warn("profile removed; provider account kept",
			logger.Email(email), logger.UserID(rec.ID))
		return rec, nil
	}

	if err := p.deps.Identity.DeleteUser(ctx, rec.ID); err != nil {
		log.Error("account delete failed after profile removal",
			logger.Email(email), logger.UserID(rec.ID), logger.Err(err))
		return rec, fmt.Errorf("profile removed but account %s remains: %w", rec.ID, err)
	}

	log.Info("profile and account removed", logger.Email(email), logger.UserID(rec.ID))
	return rec, nil
}

// SendMagicLink pide al provider enviar un link de login de un solo uso.
func (p *Provisioner) SendMagicLink(ctx context.Context, email, redirectTo string, createAccount bool) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveOperation(OpSendMagicLink, err, time.Since(start)) }()

	log := logger.From(ctx).With(logger.Op(OpSendMagicLink), logger.Layer("service"))

	email = normalizeEmail(email)
	if email == "" {
		return &ValidationError{Field: "email", Reasons: []string{"required"}}
	}

	err = p.deps.Identity.SendMagicLink(ctx, repository.MagicLinkRequest{
		Email:      email,
		RedirectTo: strings.TrimSpace(redirectTo),
		CreateUser: createAccount,
	})
	if err != nil {
		log.Error("magic link failed", logger.Email(email), logger.Err(err))
		return err
	}
	log.Info("magic link sent", logger.Email(email), logger.Bool("create_account", createAccount))
	return nil
}

func (p *Provisioner) validateCreate(email, pwd string, attrs ProfileAttributes) error {
	if email == "" {
		return &ValidationError{Field: "email", Reasons: []string{"required"}}
	}
	if pwd == "" {
		return &ValidationError{Field: "password", Reasons: []string{"required"}}
	}
	for _, k := range requiredAttrs {
		v, ok := attrs[k]
		if !ok {
			return &ValidationError{Field: k, Reasons: []string{"required"}}
		}
		s, isStr := v.(string)
		if !isStr {
			return &ValidationError{Field: k, Reasons: []string{"must_be_string"}}
		}
		if strings.TrimSpace(s) == "" {
			return &ValidationError{Field: k, Reasons: []string{"required"}}
		}
	}
	for k := range attrs {
		if !validation.ValidAttributeName(k) {
			return &ValidationError{Field: k, Reasons: []string{"invalid_name"}}
		}
	}
	for _, k := range []string{repository.ColumnID, repository.ColumnEmail} {
		if _, ok := attrs[k]; ok {
			return &ValidationError{Field: k, Reasons: []string{"reserved"}}
		}
	}
	if p.deps.Policy.Enabled() {
		if ok, reasons := p.deps.Policy.Validate(pwd); !ok {
			return &ValidationError{Field: "password", Reasons: reasons}
		}
	}
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
