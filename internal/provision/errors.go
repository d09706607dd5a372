package provision

import (
	"fmt"
	"strings"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
)

// ValidationError input rechazado localmente, antes de cualquier llamada remota.
type ValidationError struct {
	Field   string
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, strings.Join(e.Reasons, ", "))
}

func (e *ValidationError) Unwrap() error { return repository.ErrInvalidInput }

// AccountCreationError el identity provider rechazó la creación de la cuenta.
// No quedan efectos: el perfil nunca se intentó.
type AccountCreationError struct {
	Email string
	Err   error
}

// Error retorna el mensaje del provider sin modificar.
func (e *AccountCreationError) Error() string { return e.Err.Error() }

func (e *AccountCreationError) Unwrap() error { return e.Err }

// ProfileInsertError la cuenta se creó pero la fila de perfil no.
// La cuenta queda huérfana en el provider; UserID permite limpiarla a mano.
type ProfileInsertError struct {
	UserID string
	Email  string
	Err    error
}

func (e *ProfileInsertError) Error() string {
	return fmt.Sprintf("profile insert failed for user %s (account %s was created and not rolled back): %v",
		e.Email, e.UserID, e.Err)
}

func (e *ProfileInsertError) Unwrap() error { return e.Err }
