// Package repository define los tipos de dominio y las capacidades externas que
// consume el provisioner.
//
// Son contratos independientes del proveedor concreto: la cuenta vive en un
// identity provider (GoTrue/Supabase Auth) y el perfil espejo en un data store
// (PostgREST o PostgreSQL directo).
//
// Las implementaciones viven en internal/identity/ y internal/store/adapters/.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────┐
//	│        cmd/provisioner  →  internal/provision       │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (interfaces)               │
//	│     IdentityProvider, ProfileRepository             │
//	└─────────────────────────────────────────────────────┘
//	              │                         │
//	              ▼                         ▼
//	┌───────────────────────┐  ┌──────────────────────────┐
//	│   identity/gotrue     │  │ store/adapters/postgrest │
//	│                       │  │ store/adapters/pg        │
//	└───────────────────────┘  └──────────────────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
package repository
