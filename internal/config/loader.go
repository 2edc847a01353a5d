// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `DSR_`, where `__` maps to “.”
     (e.g., `DSR_HTTP__LISTEN_ADDR → http.listen_addr`).

String values of the form `vault:<mount>/<path>#<key>` are then swapped
for the secret they name.  The merged tree is unmarshalled into typed
structs, defaulted, validated, enriched with the runtime root path, and
cached in an `atomic.Pointer` for lock-free reads.  `Reload()` simply
calls `Load()` again and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans  – root discovery, YAML read, env overlay.
  • ERROR spans  – YAML parse, env overlay, secret lookup, unmarshal,
    and validation failures.
  • INFO  span   – final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • The Vault client is only built when at least one value needs it.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/prismappolice/control-room-dsr/internal/vault"
)

var current atomic.Pointer[Config]

// Defaults applied after unmarshal when a field is left empty.
const (
	DefaultListenAddr  = ":8080"
	DefaultIdleTimeout = 60 * time.Minute
	DefaultMaxBytes    = 16 << 20
	DefaultTimezone    = "Asia/Kolkata"
)

// SecretSource resolves `vault:` references.  *vault.Client satisfies it.
type SecretSource interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// newSecretSource is a seam for tests.
var newSecretSource = func(ctx context.Context) (SecretSource, error) {
	return vault.New(ctx)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves DSR_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("DSR_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches Config.
func Load() (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: DSR_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("DSR_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "DSR_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(context.Background(), k); err != nil {
		zap.S().Errorw("config secret lookup failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"db_driver", cfg.Database.Driver,
		"upload_backend", cfg.Upload.Backend,
		"idle_timeout", cfg.Session.IdleTimeout,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets replaces every `vault:` string in k with its secret.
func resolveSecrets(ctx context.Context, k *koanf.Koanf) error {
	var src SecretSource
	for _, key := range k.Keys() {
		ref, ok := k.Get(key).(string)
		if !ok || !strings.HasPrefix(ref, vault.RefPrefix) {
			continue
		}
		if src == nil {
			var err error
			if src, err = newSecretSource(ctx); err != nil {
				return fmt.Errorf("vault client: %w", err)
			}
		}
		val, err := src.Resolve(ctx, ref)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
		zap.S().Debugw("config secret resolved", "key", key)
	}
	return nil
}

// applyDefaults fills fields the operator left empty.  Relative paths are
// anchored at the root.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = DefaultListenAddr
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = DefaultIdleTimeout
	}
	if c.Upload.Backend == "" {
		c.Upload.Backend = "local"
	}
	if c.Upload.Backend == "local" && c.Upload.Root == "" {
		c.Upload.Root = "uploads"
	}
	if c.Upload.MaxBytes == 0 {
		c.Upload.MaxBytes = DefaultMaxBytes
	}
	if c.Locale.Timezone == "" {
		c.Locale.Timezone = DefaultTimezone
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	for _, p := range []*string{&c.Upload.Root, &c.Log.Dir, &c.GeoIP.DBPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.Paths.Root, *p)
		}
	}
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
