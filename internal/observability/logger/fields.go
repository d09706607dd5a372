package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - EJECUCIÓN
// =================================================================================

// RunID identifica una invocación del CLI.
func RunID(v string) zap.Field {
	return zap.String("run_id", v)
}

// Command crea un campo para el subcomando ejecutado.
func Command(v string) zap.Field {
	return zap.String("command", v)
}

// Duration crea un campo para la duración de una operación.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO
// =================================================================================

// UserID crea un campo para el ID emitido por el identity provider.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Email crea un campo para el email (usar con cuidado en prod).
func Email(v string) zap.Field {
	return zap.String("email", v)
}

// UserType crea un campo para el tipo de usuario del perfil.
func UserType(v string) zap.Field {
	return zap.String("user_type", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - INTEGRACIONES
// =================================================================================

// Driver crea un campo para el driver de storage.
func Driver(v string) zap.Field {
	return zap.String("driver", v)
}

// Table crea un campo para la tabla de perfiles.
func Table(v string) zap.Field {
	return zap.String("table", v)
}

// Status crea un campo para el status code HTTP de una llamada saliente.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (cli, service, adapter).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
