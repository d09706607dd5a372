package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/provisioner/internal/config"
	"github.com/dropDatabas3/provisioner/internal/identity/gotrue"
	"github.com/dropDatabas3/provisioner/internal/metrics"
	"github.com/dropDatabas3/provisioner/internal/observability/logger"
	"github.com/dropDatabas3/provisioner/internal/provision"
	"github.com/dropDatabas3/provisioner/internal/security/servicekey"
	"github.com/dropDatabas3/provisioner/internal/store"

	// adapters (se auto-registran)
	_ "github.com/dropDatabas3/provisioner/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/provisioner/internal/store/adapters/postgrest"
)

var version = "dev"

// app estado compartido entre comandos de una ejecución.
type app struct {
	configPath      string
	out             string
	metricsTextfile string

	cfg      *config.Config
	conn     store.Connection
	prov     *provision.Provisioner
	registry *prometheus.Registry
}

func main() {
	// .env primero; godotenv no pisa variables ya definidas
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.dev")

	a := &app{
		configPath: envOr("PROVISIONER_CONFIG", "configs/config.yaml"),
		out:        envOr("PROVISIONER_OUT", "text"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()

	a.shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		var insErr *provision.ProfileInsertError
		if errors.As(err, &insErr) {
			fmt.Fprintf(os.Stderr, "hint: the account %s exists without a profile; remove it from the auth dashboard or retry the insert manually\n", insErr.UserID)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "provisioner",
		Short:         "Alta administrativa de usuarios (Supabase Auth + tabla de perfiles)",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", a.configPath, "Ruta al config YAML (env PROVISIONER_CONFIG)")
	root.PersistentFlags().StringVar(&a.out, "out", a.out, "Formato de salida: json|text")
	root.PersistentFlags().StringVar(&a.metricsTextfile, "metrics-textfile", "", "Archivo .prom para node_exporter (pisa metrics.textfile)")

	root.AddCommand(newUsersCmd(a), newSchemaCmd())
	return root
}

// setup carga config, logger y dependencias. Corre antes de cada subcomando de users.
func (a *app) setup(cmd *cobra.Command) error {
	if a.out != "text" && a.out != "json" {
		return fmt.Errorf("--out must be json or text, got %q", a.out)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.metricsTextfile == "" {
		a.metricsTextfile = cfg.Metrics.Textfile
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "provisioner",
		Version:     version,
	})

	log := logger.With(
		logger.RunID(uuid.NewString()),
		logger.Command(cmd.CommandPath()),
	)
	ctx := logger.ToContext(cmd.Context(), log)
	cmd.SetContext(ctx)

	if cfg.MustRequireServiceRole() {
		if err := servicekey.RequireServiceRole(cfg.Identity.ServiceRoleKey); err != nil {
			return fmt.Errorf("identity.service_role_key: %w", err)
		}
	}

	policy, err := cfg.PasswordPolicy()
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	if err := metrics.Register(a.registry); err != nil {
		return err
	}

	conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
		Name:         cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		BaseURL:      cfg.Identity.URL,
		ServiceKey:   cfg.Identity.ServiceRoleKey,
		Table:        cfg.Storage.Table,
		Schema:       cfg.Storage.Schema,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
		Timeout:      cfg.IdentityTimeout(),
	})
	if err != nil {
		return err
	}
	a.conn = conn

	log.Debug("storage ready",
		logger.Driver(conn.Name()),
		logger.Table(cfg.Storage.Table),
	)

	a.prov = provision.New(provision.Deps{
		Identity: gotrue.New(gotrue.Config{
			BaseURL:    cfg.Identity.URL,
			ServiceKey: cfg.Identity.ServiceRoleKey,
			Timeout:    cfg.IdentityTimeout(),
		}),
		Profiles: conn.Profiles(),
		Policy:   policy,
	})
	return nil
}

// shutdown cierra la conexión y vuelca métricas. Corre también si el comando falló.
func (a *app) shutdown() {
	start := time.Now()
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			logger.L().Warn("close storage", logger.Err(err))
		}
	}
	if a.registry != nil {
		if err := metrics.WriteTextfile(a.metricsTextfile, a.registry); err != nil {
			logger.L().Warn("metrics textfile", logger.Err(err))
		}
	}
	if a.cfg != nil {
		logger.L().Debug("shutdown", logger.Duration(time.Since(start)))
		_ = logger.Sync()
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
