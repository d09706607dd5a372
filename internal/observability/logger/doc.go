// Package logger provides a process-wide Zap logger with context-based scoping.
//
// # Design Decisions
//
//   - Global: una sola instancia inicializada con Init() desde main.
//   - Context Scoping: cada ejecución lleva su logger "scoped" (run_id, command)
//     en el context; services y adapters lo recuperan con From(ctx).
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Output: stderr por defecto; stdout es de los comandos.
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{
//	    Env:   cfg.App.Env,   // "dev" o "prod"
//	    Level: cfg.Log.Level, // "debug", "info", "warn", "error"
//	})
//	defer logger.Sync()
//
// En services (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("admin user created", logger.UserID(id))
package logger
