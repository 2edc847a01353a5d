// cmd/web/main.go
//
// DSR web server entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load configuration (conf/config.yaml, conf/.env, DSR_* env vars, and
//     `vault:` references).
//
//  2. Start the rotating JSON logger (tees to console when running in a TTY).
//
//  3. Open the database and, when configured, apply embedded migrations.
//
//  4. Load the form catalog, the civil clock, and the upload file store.
//
//  5. Build the services, the session manager, and the view engine, then
//     the root router with every registered component.
//
//  6. Serve until SIGINT or SIGTERM, then drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/civil"
	"github.com/prismappolice/control-room-dsr/internal/component"
	"github.com/prismappolice/control-room-dsr/internal/config"
	"github.com/prismappolice/control-room-dsr/internal/database"
	"github.com/prismappolice/control-room-dsr/internal/entry"
	"github.com/prismappolice/control-room-dsr/internal/filestore"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/logger"
	"github.com/prismappolice/control-room-dsr/internal/report"
	"github.com/prismappolice/control-room-dsr/internal/requestinfo"
	"github.com/prismappolice/control-room-dsr/internal/server"
	"github.com/prismappolice/control-room-dsr/internal/session"
	"github.com/prismappolice/control-room-dsr/internal/store"
	"github.com/prismappolice/control-room-dsr/internal/upload"
	"github.com/prismappolice/control-room-dsr/internal/view"

	_ "github.com/prismappolice/control-room-dsr/components/admin"
	_ "github.com/prismappolice/control-room-dsr/components/auth"
	_ "github.com/prismappolice/control-room-dsr/components/district"
	_ "github.com/prismappolice/control-room-dsr/components/home"
)

// shutdownGrace bounds how long in-flight requests may run after a signal.
const shutdownGrace = 15 * time.Second

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Tee: runningInTTY()})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logOut.Fatalw("server stopped", "err", err)
	}
	logOut.Info("server stopped cleanly")
}

func run(ctx context.Context, cfg *config.Config) error {
	//
	// ── 1.  Database ────────────────────────────────────────────────────
	//
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	//
	// ── 2.  Catalog, clock, and file store ──────────────────────────────
	//
	forms, err := form.Default()
	if err != nil {
		return err
	}
	clock, err := civil.NewClock(cfg.Locale.Timezone)
	if err != nil {
		return err
	}
	files, err := openFiles(ctx, cfg.Upload)
	if err != nil {
		return err
	}
	if cfg.GeoIP.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.GeoIP.DBPath); err != nil {
			zap.L().Warn("geoip disabled", zap.Error(err))
		}
		defer requestinfo.CloseGeo()
	}

	//
	// ── 3.  Services and web plumbing ───────────────────────────────────
	//
	users, entries, uploads := store.NewUsers(db), store.NewEntries(db), store.NewUploads(db)

	secret := []byte(cfg.Session.Secret)
	csrf, err := form.NewCSRF(secret)
	if err != nil {
		return err
	}
	sessions, err := session.NewManager(session.Options{
		Secret:      secret,
		IdleTimeout: cfg.Session.IdleTimeout,
		Persistent:  cfg.Session.Persistent,
		Secure:      cfg.Session.Secure,
	})
	if err != nil {
		return err
	}
	views, err := view.New(csrf, forms)
	if err != nil {
		return err
	}

	deps := component.Deps{
		Forms:          forms,
		Clock:          clock,
		View:           views,
		Sessions:       sessions,
		Auth:           auth.NewService(users, clock),
		Entries:        entry.NewService(entries, forms, clock),
		Uploads:        upload.NewService(uploads, files, forms, clock),
		Reports:        report.NewService(entries, uploads, forms, clock),
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Ping:           db.PingContext,
	}
	handler := server.Router(server.RouterOptions{
		Deps:       deps,
		CSRF:       csrf,
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
	})

	//
	// ── 4.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(cfg.HTTP, handler)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("listening",
			zap.String("addr", srv.Addr),
			zap.Strings("components", component.Names()),
			zap.Duration("idle_timeout", sessions.IdleTimeout()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// openFiles selects the upload backend named in cfg.
func openFiles(ctx context.Context, cfg config.Upload) (filestore.Store, error) {
	if cfg.Backend == "s3" {
		return filestore.NewS3(ctx, filestore.S3Options{
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	}
	return filestore.NewLocal(cfg.Root)
}
