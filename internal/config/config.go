package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/provisioner/internal/security/password"
)

// Drivers de storage soportados.
const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Identity provider (Supabase Auth / GoTrue).
	Identity struct {
		// URL base del proyecto, ej: https://<ref>.supabase.co
		URL string `yaml:"url"`
		// ServiceRoleKey credencial elevada. Preferir env SUPABASE_SERVICE_ROLE_KEY.
		ServiceRoleKey string `yaml:"service_role_key"`
		Timeout        string `yaml:"timeout"`
		// RequireServiceRole rechaza keys cuyo claim role no sea service_role.
		RequireServiceRole *bool `yaml:"require_service_role"`
	} `yaml:"identity"`

	Storage struct {
		Driver string `yaml:"driver"` // postgrest | postgres
		// DSN solo para driver postgres.
		DSN    string `yaml:"dsn"`
		Table  string `yaml:"table"`
		Schema string `yaml:"schema"`

		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MaxIdleConns int `yaml:"max_idle_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	MagicLink struct {
		RedirectURL string `yaml:"redirect_url"`
	} `yaml:"magic_link"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password_policy"`
		PasswordBlacklistPath string `yaml:"password_blacklist_path"`
	} `yaml:"security"`

	Metrics struct {
		// Textfile ruta .prom para el textfile collector de node_exporter.
		// Vacío = deshabilitado.
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// Load lee el YAML (si existe), aplica defaults y overrides de entorno, y valida.
// Un path vacío o inexistente no es error: todo puede venir de env.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// sin archivo: defaults + env
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	// Overrides por env
	c.applyEnvOverrides()

	// Normalizar ruta de blacklist (si relativa) respecto al directorio del YAML
	if p := strings.TrimSpace(c.Security.PasswordBlacklistPath); p != "" && !filepath.IsAbs(p) && strings.TrimSpace(path) != "" {
		c.Security.PasswordBlacklistPath = filepath.Clean(filepath.Join(filepath.Dir(path), p))
	}

	// sane defaults
	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Identity.Timeout == "" {
		c.Identity.Timeout = "30s"
	}
	if c.Identity.RequireServiceRole == nil {
		t := true
		c.Identity.RequireServiceRole = &t
	}
	c.Identity.URL = strings.TrimRight(strings.TrimSpace(c.Identity.URL), "/")
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverPostgREST
	}
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	if c.Storage.Table == "" {
		c.Storage.Table = "users"
	}
	if c.Storage.Schema == "" {
		c.Storage.Schema = "public"
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(s); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
// Los nombres SUPABASE_* son los que ya usa el dashboard.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// IDENTITY
	if v, ok := getEnvStr("SUPABASE_URL"); ok {
		c.Identity.URL = v
	}
	if v, ok := getEnvStr("SUPABASE_SERVICE_ROLE_KEY"); ok {
		c.Identity.ServiceRoleKey = v
	}
	if v, ok := getEnvStr("IDENTITY_TIMEOUT"); ok {
		c.Identity.Timeout = v
	}
	if v, ok := getEnvBool("IDENTITY_REQUIRE_SERVICE_ROLE"); ok {
		c.Identity.RequireServiceRole = &v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("PROFILE_TABLE"); ok {
		c.Storage.Table = v
	}
	if v, ok := getEnvStr("PROFILE_SCHEMA"); ok {
		c.Storage.Schema = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}

	// MAGIC LINK
	if v, ok := getEnvStr("MAGIC_LINK_REDIRECT_URL"); ok {
		c.MagicLink.RedirectURL = v
	}

	// SECURITY
	if v, ok := getEnvInt("SECURITY_PASSWORD_POLICY_MIN_LENGTH"); ok {
		c.Security.PasswordPolicy.MinLength = v
	}
	if v, ok := getEnvStr("SECURITY_PASSWORD_BLACKLIST_PATH"); ok {
		c.Security.PasswordBlacklistPath = v
	}

	// METRICS
	if v, ok := getEnvStr("METRICS_TEXTFILE"); ok {
		c.Metrics.Textfile = v
	}
}

// Validate verifica los valores críticos antes de hablar con el provider.
func (c *Config) Validate() error {
	if c.Identity.URL == "" {
		return errors.New("config: identity.url is required (or SUPABASE_URL)")
	}
	u, err := url.Parse(c.Identity.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: identity.url %q is not an absolute URL", c.Identity.URL)
	}
	if c.Identity.ServiceRoleKey == "" {
		return errors.New("config: identity.service_role_key is required (or SUPABASE_SERVICE_ROLE_KEY)")
	}
	if _, err := time.ParseDuration(c.Identity.Timeout); err != nil {
		return fmt.Errorf("config: identity.timeout: %w", err)
	}

	switch c.Storage.Driver {
	case DriverPostgREST:
	case DriverPostgres:
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return errors.New("config: storage.dsn is required for driver postgres")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q (postgrest|postgres)", c.Storage.Driver)
	}

	if c.Security.PasswordPolicy.MinLength < 0 {
		return errors.New("config: security.password_policy.min_length must be >= 0")
	}
	return nil
}

// IdentityTimeout retorna el timeout parseado (validado en Load).
func (c *Config) IdentityTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Identity.Timeout)
	return d
}

// MustRequireServiceRole indica si hay que inspeccionar el claim role de la key.
func (c *Config) MustRequireServiceRole() bool {
	return c.Identity.RequireServiceRole == nil || *c.Identity.RequireServiceRole
}

// PasswordPolicy arma la policy local a partir de la config (carga la blacklist si hay).
func (c *Config) PasswordPolicy() (password.Policy, error) {
	p := c.Security.PasswordPolicy
	bl, err := password.LoadBlacklist(c.Security.PasswordBlacklistPath)
	if err != nil {
		return password.Policy{}, err
	}
	return password.Policy{
		MinLength:     p.MinLength,
		RequireUpper:  p.RequireUpper,
		RequireLower:  p.RequireLower,
		RequireDigit:  p.RequireDigit,
		RequireSymbol: p.RequireSymbol,
		Blacklist:     bl,
	}, nil
}
