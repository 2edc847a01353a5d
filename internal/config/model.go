// internal/config/model.go
//
// Typed configuration model for the DSR server.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                        – dotenv values,
//   • `conf/global.yaml`                     – primary static file,
//   • `DSR_`-prefixed environment overrides  – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the
// Vault client *before* unmarshalling, so the model never stores Vault
// references, only plain strings.
//
// Validation happens immediately after unmarshal and defaulting; the app
// fails fast if required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • Durations are written as Go duration strings ("60m", "15s").
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
}

//
// Database section
//

// Database selects the driver and connection.
//
// The DSN is kept in YAML so operators can tweak host, port, or flags
// without touching Vault.  The password is usually a `vault:` reference
// and is injected into the parsed DSN at connect time, keeping
// credentials out of flat files and git history.
type Database struct {
	Driver   string `koanf:"driver"   validate:"required,oneof=mysql pgx"`
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=0"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
	Migrate  bool   `koanf:"migrate"` // apply embedded migrations at boot
}

//
// Session section
//

// Session configures the signed session cookie.
type Session struct {
	Secret      string        `koanf:"secret"       validate:"required,min=32"`
	IdleTimeout time.Duration `koanf:"idle_timeout" validate:"gte=0"`
	Persistent  bool          `koanf:"persistent"`
	Secure      bool          `koanf:"secure"`
}

//
// Upload section
//

// S3 addresses an S3-compatible bucket.
type S3 struct {
	Bucket    string `koanf:"bucket"`
	Prefix    string `koanf:"prefix"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// Upload selects where control-room files are kept.
type Upload struct {
	Backend  string `koanf:"backend"   validate:"required,oneof=local s3"`
	Root     string `koanf:"root"`
	MaxBytes int64  `koanf:"max_bytes" validate:"gt=0"`
	S3       S3     `koanf:"s3"`
}

//
// Locale, log, and geo sections
//

// Locale fixes the zone used for "today" and record timestamps.
type Locale struct {
	Timezone string `koanf:"timezone" validate:"required,timezone"`
}

// Log configures the file logger.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `koanf:"dir"`
}

// GeoIP points at an optional GeoLite2-City database.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or DSR_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Session  Session  `koanf:"session"`
	Upload   Upload   `koanf:"upload"`
	Locale   Locale   `koanf:"locale"`
	Log      Log      `koanf:"log"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"`
}
