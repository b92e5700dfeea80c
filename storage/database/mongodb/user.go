package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/caplc/backend/core"
	"github.com/caplc/backend/core/user"
)

type userRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{coll: db.coll(usersColl)}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	if usr.WorkshopParticipations == nil {
		usr.WorkshopParticipations = []string{}
	}
	if _, err := repo.coll.InsertOne(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	q := bson.M{}
	if filter.ID != "" {
		q["_id"] = filter.ID
	}
	if filter.Email != "" {
		q["email"] = filter.Email
	}
	if len(q) == 0 {
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	if err := repo.coll.FindOne(ctx, q).Decode(&usr); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	q := bson.M{}
	if len(filter.Roles) > 0 {
		// matches both role lists and legacy single role strings
		q["role"] = bson.M{"$in": filter.Roles}
	}
	opts := options.Find().SetSort(sortDoc(orderings, bson.E{Key: "createdAt", Value: 1}))

	cur, err := repo.coll.Find(ctx, q, opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0)
	if err = cur.All(ctx, &users); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

type blacklistedToken struct {
	Token         string    `bson:"token"`
	BlacklistedOn time.Time `bson:"blacklistedOn"`
}

type tokenBlacklist struct {
	coll *mongo.Collection
}

var _ user.TokenBlacklist = (*tokenBlacklist)(nil)

func NewTokenBlacklist(db *DB) user.TokenBlacklist {
	return &tokenBlacklist{coll: db.coll(blacklistedTokensColl)}
}

func (bl *tokenBlacklist) BlacklistToken(ctx context.Context, jti string, on time.Time) error {
	_, err := bl.coll.InsertOne(ctx, blacklistedToken{Token: jti, BlacklistedOn: on})
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(err, "blacklisting token")
	}
	return nil
}

func (bl *tokenBlacklist) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := bl.coll.CountDocuments(ctx, bson.M{"token": jti}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "checking token blacklist")
	}
	return n > 0, nil
}
