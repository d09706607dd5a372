package repository

import (
	"context"
	"time"
)

// AccountCreationRequest contiene los datos que se envían al admin API del
// identity provider.
type AccountCreationRequest struct {
	Email    string
	Password string
	// EmailConfirm marca el email como verificado (bypass del flujo de confirmación).
	EmailConfirm bool
	UserMetadata map[string]any
}

// ProvisionedUser es la cuenta creada por el identity provider.
// El ID es opaco: lo emite el provider y el perfil local solo lo referencia.
type ProvisionedUser struct {
	ID               string
	Email            string
	EmailConfirmedAt *time.Time
	UserMetadata     map[string]any
	CreatedAt        time.Time
}

// MagicLinkRequest pide al provider enviar un link de login de un solo uso.
type MagicLinkRequest struct {
	Email      string
	RedirectTo string
	// CreateUser permite que el provider cree la cuenta si no existe.
	CreateUser bool
}

// IdentityProvider define las capacidades administrativas del identity provider.
type IdentityProvider interface {
	// CreateUser crea una cuenta con credencial de servicio.
	// Retorna el error del provider sin alterar su mensaje.
	CreateUser(ctx context.Context, req AccountCreationRequest) (*ProvisionedUser, error)

	// DeleteUser elimina una cuenta por ID.
	// Retorna ErrNotFound si no existe.
	DeleteUser(ctx context.Context, userID string) error

	// SendMagicLink dispara el envío de un link de login por email.
	SendMagicLink(ctx context.Context, req MagicLinkRequest) error
}
