// cmd/seed/main.go
//
// Creates the default DSR accounts.
//
// Context
// -------
// A fresh install needs one admin, one control-room account, and one
// account per district or unit.  Usernames for units are the lower-cased
// unit name with spaces replaced by underscores, and every default
// password is the username followed by "123".  Operators are expected to
// change them through /auth/change-password on first login.
//
// Existing usernames are skipped, so the command is safe to run again
// after new units are added to the catalog.
//
// Usage
// -----
//
//	seed [--migrate] [--dry-run] [--skip-units]
//
// Notes
// -----
// • Reads the same configuration as cmd/web.
// • Oxford commas, two spaces after periods.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/prismappolice/control-room-dsr/internal/config"
	"github.com/prismappolice/control-room-dsr/internal/database"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/logger"
	"github.com/prismappolice/control-room-dsr/internal/store"
)

func main() {
	var opts options
	var migrate bool
	flags := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	flags.BoolVar(&migrate, "migrate", false, "apply embedded migrations before seeding")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "report what would be created without writing")
	flags.BoolVar(&opts.SkipUnits, "skip-units", false, "create only the admin and control-room accounts")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logOut, err := logger.New(logger.Options{Dir: cfg.Log.Dir, Level: cfg.Log.Level, Tee: true})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logOut.Fatalw("open database", "err", err)
	}
	defer db.Close()
	if migrate {
		if err := database.Migrate(ctx, db); err != nil {
			logOut.Fatalw("migrate", "err", err)
		}
	}

	forms, err := form.Default()
	if err != nil {
		logOut.Fatalw("load catalog", "err", err)
	}

	res, err := seed(ctx, store.NewUsers(db), forms, time.Now().UTC(), opts)
	if err != nil {
		logOut.Fatalw("seed accounts", "err", err)
	}
	for _, u := range res.Created {
		fmt.Printf("created  %-28s %s\n", u, u+"123")
	}
	logOut.Infow("seed complete", "created", len(res.Created), "skipped", res.Skipped, "dry_run", opts.DryRun)
}
