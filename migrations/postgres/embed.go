// Package migrations embeds SQL migration files.
package migrations

import "embed"

// ProfilesFS contiene el DDL de la tabla de perfiles (driver postgres o
// SQL editor de Supabase).
//
//go:embed profiles/*.sql
var ProfilesFS embed.FS

// ProfilesDir is the directory within ProfilesFS where migrations live.
const ProfilesDir = "profiles"
