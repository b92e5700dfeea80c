package mongodb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/workshop"
)

type workshopRepository struct {
	coll *mongo.Collection
}

var _ workshop.Repository = (*workshopRepository)(nil)

func NewWorkshopRepository(db *DB) workshop.Repository {
	return &workshopRepository{coll: db.coll(workshopsColl)}
}

func (repo *workshopRepository) CreateWorkshop(ctx context.Context, w workshop.Workshop) (workshop.Workshop, error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	if _, err := repo.coll.InsertOne(ctx, w); err != nil {
		return workshop.Workshop{}, errors.Wrap(err, "inserting workshop")
	}
	return w, nil
}

func (repo *workshopRepository) GetWorkshop(ctx context.Context, id string) (workshop.Workshop, error) {
	var w workshop.Workshop
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&w); err != nil {
		if err == mongo.ErrNoDocuments {
			return workshop.Workshop{}, workshop.ErrNotFound
		}
		return workshop.Workshop{}, errors.Wrap(err, "finding workshop")
	}
	return w, nil
}

func (repo *workshopRepository) QueryWorkshops(
	ctx context.Context,
	filter workshop.QueryFilter,
	orderings ...core.DBOrdering,
) ([]workshop.Workshop, error) {
	q := bson.M{}
	if filter.CoachID != "" {
		q["coachId"] = filter.CoachID
	}
	opts := options.Find().
		SetSort(sortDoc(orderings, bson.E{Key: "createdAt", Value: 1})).
		// the list view does not need the heavy parts
		SetProjection(bson.M{"rounds": 0})

	cur, err := repo.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying workshops")
	}
	workshops := make([]workshop.Workshop, 0)
	if err = cur.All(ctx, &workshops); err != nil {
		return nil, errors.Wrap(err, "decoding workshops")
	}
	return workshops, nil
}

func (repo *workshopRepository) UpdateWorkshop(ctx context.Context, w workshop.Workshop) (workshop.Workshop, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": w.ID}, w)
	if err != nil {
		return workshop.Workshop{}, errors.Wrap(err, "updating workshop")
	}
	if res.MatchedCount == 0 {
		return workshop.Workshop{}, workshop.ErrNotFound
	}
	return w, nil
}

func (repo *workshopRepository) DeleteWorkshop(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting workshop")
	}
	if res.DeletedCount == 0 {
		return workshop.ErrNotFound
	}
	return nil
}
