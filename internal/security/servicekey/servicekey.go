// Package servicekey inspecciona la API key del identity provider antes de usarla.
//
// Las keys de Supabase son JWT firmados por el proyecto. No tenemos el secreto,
// así que solo se lee el claim "role" sin verificar la firma: el provider
// es quien la valida en cada request.
package servicekey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
)

// RoleServiceRole es el rol que saltea RLS y habilita el admin API.
const RoleServiceRole = "service_role"

// ErrNotServiceRole la key es válida pero no tiene privilegios de servicio (ej: anon).
var ErrNotServiceRole = fmt.Errorf("servicekey: key is not a %s key: %w", RoleServiceRole, repository.ErrUnauthorized)

// Role retorna el claim role de la key.
func Role(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("servicekey: empty key")
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return "", fmt.Errorf("servicekey: parse: %w", err)
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return "", errors.New("servicekey: missing role claim")
	}
	return role, nil
}

// RequireServiceRole falla si la key no es service_role.
func RequireServiceRole(key string) error {
	role, err := Role(key)
	if err != nil {
		return err
	}
	if role != RoleServiceRole {
		return fmt.Errorf("%w (got %q)", ErrNotServiceRole, role)
	}
	return nil
}
