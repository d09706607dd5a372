package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configura el logger.
type Config struct {
	// Env define el entorno: "dev" (consola con colores) o "prod" (JSON).
	// Default: "dev"
	Env string

	// Level define el nivel mínimo de log: "debug", "info", "warn", "error".
	// Default: "info"
	Level string

	// ServiceName es el nombre del servicio para incluir en logs.
	// Opcional.
	ServiceName string

	// Version es la versión del binario.
	// Opcional.
	Version string

	// OutputPaths destinos del log. Default: stderr, así stdout queda libre
	// para la salida de los comandos (text/json).
	OutputPaths []string
}

// build construye el logger según la configuración.
func build(cfg Config) *zap.Logger {
	zcfg := zapConfig(cfg)

	opts := []zap.Option{zap.AddCaller()}
	if isProd(cfg.Env) {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	l, err := zcfg.Build(opts...)
	if err != nil {
		// Fallback a un logger básico si falla
		l, _ = zap.NewProduction()
	}

	if cfg.ServiceName != "" {
		l = l.With(zap.String("service", cfg.ServiceName))
	}
	if cfg.Version != "" {
		l = l.With(zap.String("version", cfg.Version))
	}
	return l
}

// zapConfig arma la zap.Config para el entorno: consola con colores en dev,
// JSON ISO8601 en prod.
func zapConfig(cfg Config) zap.Config {
	var zcfg zap.Config
	if isProd(cfg.Env) {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		zcfg.DisableStacktrace = true
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	zcfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	out := cfg.OutputPaths
	if len(out) == 0 {
		out = []string{"stderr"}
	}
	zcfg.OutputPaths = out
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg
}

func isProd(env string) bool {
	return strings.EqualFold(strings.TrimSpace(env), "prod")
}

// parseLevel convierte un string a zapcore.Level.
func parseLevel(lvl string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
