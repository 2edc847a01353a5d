package main

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/prismappolice/control-room-dsr/internal/auth"
	"github.com/prismappolice/control-room-dsr/internal/form"
	"github.com/prismappolice/control-room-dsr/internal/store"
)

// controlRoomDistrict is the district label stored on the control-room account.
const controlRoomDistrict = "Control Room"

type accounts interface {
	ByUsername(ctx context.Context, username string) (*store.User, error)
	Create(ctx context.Context, u *store.User) (int64, error)
}

type options struct {
	DryRun    bool
	SkipUnits bool
}

type result struct {
	Created []string
	Skipped int
}

type account struct {
	username string
	role     auth.Role
	district string
}

// unitUsername turns "West Godavari" into "west_godavari".
func unitUsername(unit string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(unit)), " ", "_")
}

func defaults(forms *form.Registry, skipUnits bool) []account {
	out := []account{
		{username: "admin", role: auth.RoleAdmin},
		{username: "controlroom", role: auth.RoleControlRoom, district: controlRoomDistrict},
	}
	if skipUnits {
		return out
	}
	for _, u := range forms.Units() {
		out = append(out, account{username: unitUsername(u), role: auth.RoleDistrict, district: u})
	}
	return out
}

// seed creates every default account that does not exist yet.
func seed(ctx context.Context, users accounts, forms *form.Registry, now time.Time, opts options) (result, error) {
	var res result
	for _, a := range defaults(forms, opts.SkipUnits) {
		_, err := users.ByUsername(ctx, a.username)
		switch {
		case err == nil:
			res.Skipped++
			continue
		case !errors.Is(err, store.ErrNotFound):
			return res, err
		}

		if !opts.DryRun {
			hash, err := auth.HashPassword(a.username + "123")
			if err != nil {
				return res, err
			}
			u := &store.User{
				Username:     a.username,
				PasswordHash: hash,
				UserType:     string(a.role),
				DistrictName: sql.NullString{String: a.district, Valid: a.district != ""},
				IsActive:     true,
				CreatedAt:    now,
			}
			if _, err := users.Create(ctx, u); err != nil {
				return res, err
			}
		}
		res.Created = append(res.Created, a.username)
	}
	return res, nil
}
