package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/carbon"
	"github.com/caplc/backend/core/user"
	"github.com/caplc/backend/core/workshop"
	inmemdb "github.com/caplc/backend/storage/database/inmem"
	"github.com/caplc/backend/storage/database/mongodb"
)

// database engines
const (
	EngineMongo  = "mongo"
	EngineMemory = "memory"
)

// Repositories are the repositories of every domain, backed by the same database.
type Repositories struct {
	DB        core.DB
	Users     user.Repository
	Blacklist user.TokenBlacklist
	Cards     actioncard.Repository
	Carbon    carbon.Repository
	Workshops workshop.Repository
}

// Open opens the database selected by conf.Database.Engine.
// MongoDB indexes are created if they do not exist.
func Open(ctx context.Context, conf *core.Config) (*Repositories, error) {
	switch conf.Database.Engine {
	case EngineMemory:
		db := inmemdb.Open()
		return &Repositories{
			DB:        db,
			Users:     inmemdb.NewUserRepository(db),
			Blacklist: inmemdb.NewTokenBlacklist(db),
			Cards:     inmemdb.NewActionCardRepository(db),
			Carbon:    inmemdb.NewCarbonRepository(db),
			Workshops: inmemdb.NewWorkshopRepository(db),
		}, nil

	case EngineMongo:
		db, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening database")
		}
		if err = db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(ctx)
			return nil, errors.Wrap(err, "creating indexes")
		}
		return &Repositories{
			DB:        db,
			Users:     mongodb.NewUserRepository(db),
			Blacklist: mongodb.NewTokenBlacklist(db),
			Cards:     mongodb.NewActionCardRepository(db),
			Carbon:    mongodb.NewCarbonRepository(db),
			Workshops: mongodb.NewWorkshopRepository(db),
		}, nil
	}
	return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
}
