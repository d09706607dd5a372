package repository

import "context"

// Columnas que el provisioner controla; los atributos no pueden pisarlas.
const (
	ColumnID    = "id"
	ColumnEmail = "email"
)

// ProfileRecord es la fila de perfil que espeja la cuenta del provider.
// Invariante: nunca existe sin una cuenta con el mismo ID.
type ProfileRecord struct {
	ID         string
	Email      string
	Attributes map[string]any
}

// Row aplana el perfil a {id, email, ...attributes}.
// id y email siempre ganan sobre un atributo con el mismo nombre.
func (p ProfileRecord) Row() map[string]any {
	row := make(map[string]any, len(p.Attributes)+2)
	for k, v := range p.Attributes {
		row[k] = v
	}
	row[ColumnID] = p.ID
	row[ColumnEmail] = p.Email
	return row
}

// ProfileFromRow arma un ProfileRecord a partir de una fila genérica.
func ProfileFromRow(row map[string]any) *ProfileRecord {
	p := &ProfileRecord{Attributes: make(map[string]any, len(row))}
	for k, v := range row {
		switch k {
		case ColumnID:
			p.ID = asString(v)
		case ColumnEmail:
			p.Email = asString(v)
		default:
			p.Attributes[k] = v
		}
	}
	return p
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ProfileRepository define operaciones sobre la tabla de perfiles.
type ProfileRepository interface {
	// Insert crea la fila del perfil.
	// Retorna ErrConflict si el ID o el email ya existen.
	Insert(ctx context.Context, p ProfileRecord) error

	// GetByEmail busca un perfil por email.
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*ProfileRecord, error)

	// DeleteByEmail elimina los perfiles con ese email.
	// Retorna ErrNotFound si no había ninguno.
	DeleteByEmail(ctx context.Context, email string) error
}
