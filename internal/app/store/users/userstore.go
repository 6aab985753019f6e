package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the Mongo collection holding users.
const Collection = "users"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errNameRequired   = errors.New("name is required")
	errEmailRequired  = errors.New("email is required")
	errHashRequired   = errors.New("password hash is required")
)

// publicFields excludes the password hash from reads that feed listings.
var publicFields = bson.M{"_id": 1, "name": 1, "name_ci": 1, "email": 1, "created_at": 1, "updated_at": 1}

// GetByID loads a user by ObjectID. Returns ErrUnknownUser if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, lookupErr("find user", err)
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns ErrUnknownUser if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, lookupErr("find user by email", err)
	}
	return &u, nil
}

func lookupErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return accesserr.ErrUnknownUser
	}
	return accesserr.Storage(op, err)
}

// Create inserts a new user after normalizing & validating fields.
// PasswordHash must already be set; hashing belongs to the auth package.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)

	if u.Name == "" {
		return models.User{}, errNameRequired
	}
	if u.Email == "" {
		return models.User{}, errEmailRequired
	}
	if u.PasswordHash == "" {
		return models.User{}, errHashRequired
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, accesserr.Storage("insert user", err)
	}
	return u, nil
}

// NamesByID returns display names for the given ids. Ids with no user are
// absent from the map.
func (s *Store) NamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	out := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1, "name": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, accesserr.Storage("find user names", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, accesserr.Storage("decode user name", err)
		}
		out[row.ID] = row.Name
	}
	if err := cur.Err(); err != nil {
		return nil, accesserr.Storage("find user names", err)
	}
	return out, nil
}

// ListExcluding returns every user whose id is not in exclude, sorted by
// name_ci then _id.
func (s *Store) ListExcluding(ctx context.Context, exclude []primitive.ObjectID) ([]models.User, error) {
	filter := bson.M{}
	if len(exclude) > 0 {
		filter["_id"] = bson.M{"$nin": exclude}
	}
	opts := options.Find().
		SetProjection(publicFields).
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	return s.find(ctx, filter, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, accesserr.Storage("find users", err)
	}
	defer cur.Close(ctx)

	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, accesserr.Storage("decode users", err)
	}
	if out == nil {
		out = []models.User{}
	}
	return out, nil
}
