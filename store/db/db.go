// Package db selects the concrete store driver.
package db

import (
	"github.com/pkg/errors"

	"github.com/chatvise/chatvise/internal/profile"
	"github.com/chatvise/chatvise/store"
	"github.com/chatvise/chatvise/store/db/postgres"
	"github.com/chatvise/chatvise/store/db/sqlite"
)

// NewDBDriver creates a new db driver based on profile.
//
// PostgreSQL is the production driver and the only one with vector search;
// SQLite covers development and tests through the keyword paths.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	var driver store.Driver
	var err error

	switch profile.Driver {
	case "sqlite":
		driver, err = sqlite.NewDB(profile)
	case "postgres":
		driver, err = postgres.NewDB(profile)
	default:
		return nil, errors.New("unknown db driver: only 'postgres' and 'sqlite' are supported")
	}
	if err != nil {
		return nil, errors.Wrap(err, "create db driver")
	}
	return driver, nil
}
