package inmemdb

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/actioncard"
	"github.com/caplc/backend/core/carbon"
	"github.com/caplc/backend/core/user"
	"github.com/caplc/backend/core/workshop"
)

type (
	// DB keeps every collection in memory. It backs the tests and the `memory` database engine.
	DB struct {
		user        *userTable
		token       *tokenTable
		card        *cardTable
		batch       *batchTable
		workshop    *workshopTable
		model       *modelTable
		persona     *personaTable
		formAnswers *formAnswersTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	tokenTable struct {
		sync.RWMutex
		table map[string]string // {jti: blacklisted on (RFC3339)}
	}

	cardTable struct {
		sync.RWMutex
		table map[string]*actioncard.Card
	}

	batchTable struct {
		sync.RWMutex
		table map[string]*actioncard.Batch
		order []string // insertion order
	}

	workshopTable struct {
		sync.RWMutex
		table map[string]*workshop.Workshop
	}

	modelTable struct {
		sync.RWMutex
		table []carbon.Model // creation order
	}

	personaTable struct {
		sync.RWMutex
		table map[string]*carbon.Persona
	}

	formAnswersTable struct {
		sync.RWMutex
		table map[string]*carbon.FormAnswers
	}
)

var _ core.DB = (*DB)(nil)

func Open() *DB {
	return &DB{
		user:        &userTable{table: make(map[string]*user.User)},
		token:       &tokenTable{table: make(map[string]string)},
		card:        &cardTable{table: make(map[string]*actioncard.Card)},
		batch:       &batchTable{table: make(map[string]*actioncard.Batch)},
		workshop:    &workshopTable{table: make(map[string]*workshop.Workshop)},
		model:       &modelTable{},
		persona:     &personaTable{table: make(map[string]*carbon.Persona)},
		formAnswers: &formAnswersTable{table: make(map[string]*carbon.FormAnswers)},
	}
}

func (db *DB) Ping(context.Context) error  { return nil }
func (db *DB) Close(context.Context) error { return nil }

func newID() string {
	return uuid.New().String()
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	cp := make([]string, len(s))
	copy(cp, s)
	return cp
}
