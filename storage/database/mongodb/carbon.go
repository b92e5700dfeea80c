package mongodb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/caplc/backend/core/carbon"
)

type carbonRepository struct {
	models      *mongo.Collection
	personas    *mongo.Collection
	formAnswers *mongo.Collection
}

var _ carbon.Repository = (*carbonRepository)(nil)

func NewCarbonRepository(db *DB) carbon.Repository {
	return &carbonRepository{
		models:      db.coll(modelsColl),
		personas:    db.coll(personasColl),
		formAnswers: db.coll(carbonFormAnswersColl),
	}
}

func (repo *carbonRepository) CreateModel(ctx context.Context, m carbon.Model) (carbon.Model, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if _, err := repo.models.InsertOne(ctx, m); err != nil {
		return carbon.Model{}, errors.Wrap(err, "inserting model")
	}
	return m, nil
}

func (repo *carbonRepository) findModel(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (carbon.Model, error) {
	var m carbon.Model
	if err := repo.models.FindOne(ctx, filter, opts...).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return carbon.Model{}, carbon.ErrModelNotFound
		}
		return carbon.Model{}, errors.Wrap(err, "finding model")
	}
	return m, nil
}

func (repo *carbonRepository) GetLatestModel(ctx context.Context) (carbon.Model, error) {
	return repo.findModel(ctx, bson.M{}, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (repo *carbonRepository) GetModel(ctx context.Context, id string) (carbon.Model, error) {
	return repo.findModel(ctx, bson.M{"_id": id})
}

func (repo *carbonRepository) InsertPersonas(ctx context.Context, drop bool, personas ...carbon.Persona) error {
	if drop {
		if _, err := repo.personas.DeleteMany(ctx, bson.M{}); err != nil {
			return errors.Wrap(err, "dropping personas")
		}
	}
	if len(personas) == 0 {
		return nil
	}
	docs := toDocs(len(personas), func(i int) interface{} {
		if personas[i].ID == "" {
			personas[i].ID = uuid.New().String()
		}
		return personas[i]
	})
	_, err := repo.personas.InsertMany(ctx, docs)
	return errors.Wrap(err, "inserting personas")
}

func (repo *carbonRepository) QueryPersonas(ctx context.Context, ids ...string) ([]carbon.Persona, error) {
	cur, err := repo.personas.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "querying personas")
	}
	found := make([]carbon.Persona, 0, len(ids))
	if err = cur.All(ctx, &found); err != nil {
		return nil, errors.Wrap(err, "decoding personas")
	}

	// keep the order of ids
	byID := make(map[string]carbon.Persona, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	personas := make([]carbon.Persona, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			personas = append(personas, p)
		}
	}
	return personas, nil
}

func (repo *carbonRepository) CreateFormAnswers(ctx context.Context, fa carbon.FormAnswers) (carbon.FormAnswers, error) {
	if fa.ID == "" {
		fa.ID = uuid.New().String()
	}
	if _, err := repo.formAnswers.InsertOne(ctx, fa); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return carbon.FormAnswers{}, carbon.ErrAlreadyAnswered
		}
		return carbon.FormAnswers{}, errors.Wrap(err, "inserting form answers")
	}
	return fa, nil
}

func (repo *carbonRepository) QueryFormAnswers(ctx context.Context, workshopID string) ([]carbon.FormAnswers, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := repo.formAnswers.Find(ctx, bson.M{"workshop": workshopID}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying form answers")
	}
	answers := make([]carbon.FormAnswers, 0)
	if err = cur.All(ctx, &answers); err != nil {
		return nil, errors.Wrap(err, "decoding form answers")
	}
	return answers, nil
}

func (repo *carbonRepository) DeleteFormAnswers(ctx context.Context, workshopID, participantID string) error {
	q := bson.M{"workshop": workshopID}
	if participantID != "" {
		q["participant"] = participantID
	}
	_, err := repo.formAnswers.DeleteMany(ctx, q)
	return errors.Wrap(err, "deleting form answers")
}
