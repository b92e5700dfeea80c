package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/caplc/backend/core"
)

// collections
const (
	usersColl             = "users"
	blacklistedTokensColl = "blacklistedTokens"
	actionCardsColl       = "actionCards"
	actionCardBatchesColl = "actionCardBatches"
	workshopsColl         = "workshops"
	modelsColl            = "models"
	personasColl          = "personas"
	carbonFormAnswersColl = "carbonFormAnswers"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ core.DB = (*DB)(nil)

// Open connects to MongoDB and waits for the server to answer.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	opts := options.Client().
		ApplyURI(conf.Database.URI()).
		SetConnectTimeout(conf.Database.Timeout).
		SetServerSelectionTimeout(conf.Database.Timeout).
		SetBSONOptions(&options.BSONOptions{
			// nested documents decode to maps, which the formulas walk
			DefaultDocumentM: true,
		})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	db := &DB{client: client, db: client.Database(conf.Database.Name)}
	if err = db.ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func (db *DB) ping(ctx context.Context) error {
	var err error
	maxAttempts := 20
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

func (db *DB) Ping(ctx context.Context) error {
	return db.client.Ping(ctx, readpref.Primary())
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Drop drops the whole database. Used by tests.
func (db *DB) Drop(ctx context.Context) error {
	return db.db.Drop(ctx)
}

func (db *DB) coll(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// EnsureIndexes creates the indexes backing the uniqueness constraints and the frequent queries.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersColl: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		blacklistedTokensColl: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		actionCardsColl: {
			{Keys: bson.D{{Key: "number", Value: 1}}},
		},
		actionCardBatchesColl: {
			{Keys: bson.D{{Key: "coachId", Value: 1}}},
		},
		workshopsColl: {
			{Keys: bson.D{{Key: "coachId", Value: 1}}},
		},
		modelsColl: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		carbonFormAnswersColl: {
			{
				Keys:    bson.D{{Key: "workshop", Value: 1}, {Key: "participant", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}
	for coll, models := range indexes {
		if _, err := db.coll(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

func sortDoc(orderings []core.DBOrdering, fallback ...bson.E) bson.D {
	sort := make(bson.D, 0, len(orderings)+len(fallback))
	for _, ord := range orderings {
		sort = append(sort, bson.E{Key: ord.Field, Value: ord.Direction()})
	}
	return append(sort, fallback...)
}

func toDocs(n int, get func(i int) interface{}) []interface{} {
	docs := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, get(i))
	}
	return docs
}
