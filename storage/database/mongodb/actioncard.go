package mongodb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/caplc/backend/core/actioncard"
)

type actionCardRepository struct {
	cards   *mongo.Collection
	batches *mongo.Collection
}

var _ actioncard.Repository = (*actionCardRepository)(nil)

func NewActionCardRepository(db *DB) actioncard.Repository {
	return &actionCardRepository{
		cards:   db.coll(actionCardsColl),
		batches: db.coll(actionCardBatchesColl),
	}
}

func (repo *actionCardRepository) QueryCards(ctx context.Context) ([]actioncard.Card, error) {
	cur, err := repo.cards.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying action cards")
	}
	cards := make([]actioncard.Card, 0)
	if err = cur.All(ctx, &cards); err != nil {
		return nil, errors.Wrap(err, "decoding action cards")
	}
	return cards, nil
}

func (repo *actionCardRepository) InsertCards(ctx context.Context, drop bool, cards ...actioncard.Card) error {
	if drop {
		if _, err := repo.cards.DeleteMany(ctx, bson.M{}); err != nil {
			return errors.Wrap(err, "dropping action cards")
		}
	}
	if len(cards) == 0 {
		return nil
	}
	docs := toDocs(len(cards), func(i int) interface{} {
		if cards[i].ID == "" {
			cards[i].ID = uuid.New().String()
		}
		return cards[i]
	})
	_, err := repo.cards.InsertMany(ctx, docs)
	return errors.Wrap(err, "inserting action cards")
}

func (repo *actionCardRepository) QueryBatches(ctx context.Context, filter actioncard.BatchFilter) ([]actioncard.Batch, error) {
	q := bson.M{}
	switch {
	case filter.DefaultOnly:
		q["$or"] = bson.A{
			bson.M{"coachId": bson.M{"$exists": false}},
			bson.M{"coachId": ""},
			bson.M{"coachId": nil},
		}
	case filter.CoachID != "":
		q["coachId"] = filter.CoachID
	}

	cur, err := repo.batches.Find(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying action card batches")
	}
	batches := make([]actioncard.Batch, 0)
	if err = cur.All(ctx, &batches); err != nil {
		return nil, errors.Wrap(err, "decoding action card batches")
	}
	for i := range batches {
		if batches[i].ActionCardIDs == nil {
			batches[i].ActionCardIDs = []string{}
		}
	}
	return batches, nil
}

func (repo *actionCardRepository) insertBatches(ctx context.Context, batches []actioncard.Batch) error {
	if len(batches) == 0 {
		return nil
	}
	docs := toDocs(len(batches), func(i int) interface{} {
		if batches[i].ID == "" {
			batches[i].ID = uuid.New().String()
		}
		return batches[i]
	})
	_, err := repo.batches.InsertMany(ctx, docs)
	return errors.Wrap(err, "inserting action card batches")
}

func (repo *actionCardRepository) InsertBatches(ctx context.Context, drop bool, batches ...actioncard.Batch) error {
	if drop {
		if _, err := repo.batches.DeleteMany(ctx, bson.M{}); err != nil {
			return errors.Wrap(err, "dropping action card batches")
		}
	}
	return repo.insertBatches(ctx, batches)
}

// ReplaceCoachBatches is not atomic: standalone servers do not support transactions.
func (repo *actionCardRepository) ReplaceCoachBatches(ctx context.Context, coachID string, batches []actioncard.Batch) error {
	if err := repo.DeleteCoachBatches(ctx, coachID); err != nil {
		return err
	}
	return repo.insertBatches(ctx, batches)
}

func (repo *actionCardRepository) DeleteCoachBatches(ctx context.Context, coachID string) error {
	if coachID == "" {
		return nil
	}
	_, err := repo.batches.DeleteMany(ctx, bson.M{"coachId": coachID})
	return errors.Wrap(err, "deleting coach batches")
}
