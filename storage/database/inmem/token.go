package inmemdb

import (
	"context"
	"time"

	"github.com/caplc/backend/core/user"
)

type tokenBlacklist struct {
	db *tokenTable
}

var _ user.TokenBlacklist = (*tokenBlacklist)(nil)

func NewTokenBlacklist(db *DB) user.TokenBlacklist {
	return &tokenBlacklist{db: db.token}
}

func (bl *tokenBlacklist) BlacklistToken(_ context.Context, jti string, on time.Time) error {
	bl.db.Lock()
	defer bl.db.Unlock()
	if _, ok := bl.db.table[jti]; !ok {
		bl.db.table[jti] = on.Format(time.RFC3339)
	}
	return nil
}

func (bl *tokenBlacklist) IsTokenBlacklisted(_ context.Context, jti string) (bool, error) {
	bl.db.RLock()
	defer bl.db.RUnlock()
	_, ok := bl.db.table[jti]
	return ok, nil
}
