// internal/app/store/projects/projectstore.go
package projectstore

// Terminology: User Identifiers
//   - ownerID: the ObjectID in projects.owner_id; write preconditions key on it
//   - userID: a participant candidate's ObjectID

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the Mongo collection holding projects.
const Collection = "projects"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Input errors; handlers map these to 400.
var (
	ErrNameRequired  = errors.New("project name is required")
	ErrBadStatus     = errors.New(`status must be "pending"|"active"|"completed"`)
	ErrOwnerRequired = errors.New("project must have an owner")
)

// Insert creates a project. The caller becomes the owner; participants start
// empty regardless of what p carries.
func (s *Store) Insert(ctx context.Context, p models.Project) (primitive.ObjectID, error) {
	p.ID = primitive.NewObjectID()
	p.Name = strings.TrimSpace(p.Name)
	p.NameCI = text.Fold(p.Name)
	if p.Name == "" {
		return primitive.NilObjectID, ErrNameRequired
	}
	if p.OwnerID.IsZero() {
		return primitive.NilObjectID, ErrOwnerRequired
	}
	if p.Status == "" {
		p.Status = models.DefaultProjectStatus
	}
	if !p.Status.IsValid() {
		return primitive.NilObjectID, ErrBadStatus
	}
	p.Participants = []primitive.ObjectID{}
	if p.Info == nil {
		p.Info = map[string]any{}
	}
	p.Progress = nil

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return primitive.NilObjectID, accesserr.Storage("insert project", err)
	}
	return p.ID, nil
}

// GetByID loads one project. Returns ErrUnknownProject if it does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, accesserr.ErrUnknownProject
		}
		return nil, accesserr.Storage("find project", err)
	}
	return &p, nil
}

// Fields holds the owner-editable scalar fields. Nil pointers are left
// unchanged. Fields never covers owner_id or participants.
type Fields struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	Info        map[string]any // replaced wholesale when non-nil
}

func (f Fields) set() (bson.M, error) {
	set := bson.M{}
	if f.Name != nil {
		name := strings.TrimSpace(*f.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if f.Description != nil {
		set["description"] = *f.Description
	}
	if f.Status != nil {
		if !f.Status.IsValid() {
			return nil, ErrBadStatus
		}
		set["status"] = *f.Status
	}
	if f.Info != nil {
		set["info"] = f.Info
	}
	return set, nil
}

// UpdateFields applies f to project id, conditional on owner_id still equal
// to ownerID. Returns true if a document matched. A miss returns
// ErrUnknownProject: the project is gone or its ownership precondition failed.
func (s *Store) UpdateFields(ctx context.Context, id, ownerID primitive.ObjectID, f Fields) (bool, error) {
	set, err := f.set()
	if err != nil {
		return false, err
	}
	if len(set) == 0 {
		return false, nil
	}
	set["updated_at"] = time.Now().UTC()
	return s.updateOne(ctx, "update project", bson.M{"_id": id, "owner_id": ownerID}, bson.M{"$set": set})
}

// AddParticipant adds userID to the participant set in one conditional
// write. The filter re-checks ownership and that userID is not the owner, so
// a concurrent change cannot leave the owner inside participants.
func (s *Store) AddParticipant(ctx context.Context, id, ownerID, userID primitive.ObjectID) (bool, error) {
	if userID == ownerID {
		return false, accesserr.ErrOwnerCannotBeParticipant
	}
	filter := bson.M{
		"_id": id,
		"$and": bson.A{
			bson.M{"owner_id": ownerID},
			bson.M{"owner_id": bson.M{"$ne": userID}},
		},
	}
	update := bson.M{
		"$addToSet": bson.M{"participants": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	return s.updateOne(ctx, "add participant", filter, update)
}

// RemoveParticipant pulls userID from the participant set in one
// conditional write. Removing an absent user still matches and succeeds.
func (s *Store) RemoveParticipant(ctx context.Context, id, ownerID, userID primitive.ObjectID) (bool, error) {
	if userID == ownerID {
		return false, accesserr.ErrCannotRemoveOwner
	}
	update := bson.M{
		"$pull": bson.M{"participants": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	return s.updateOne(ctx, "remove participant", bson.M{"_id": id, "owner_id": ownerID}, update)
}

// AppendProgress pushes a progress entry written by authorID. The filter
// requires authorID to be the owner or a participant at write time.
func (s *Store) AppendProgress(ctx context.Context, id, authorID primitive.ObjectID, body string) (models.ProgressEntry, error) {
	entry := models.ProgressEntry{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Text:      body,
		CreatedAt: time.Now().UTC(),
	}
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"owner_id": authorID},
			bson.M{"participants": authorID},
		},
	}
	update := bson.M{
		"$push": bson.M{"progress": entry},
		"$set":  bson.M{"updated_at": entry.CreatedAt},
	}
	if _, err := s.updateOne(ctx, "append progress", filter, update); err != nil {
		return models.ProgressEntry{}, err
	}
	return entry, nil
}

func (s *Store) updateOne(ctx context.Context, op string, filter, update bson.M) (bool, error) {
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, accesserr.Storage(op, err)
	}
	if res.MatchedCount == 0 {
		return false, accesserr.ErrUnknownProject
	}
	return true, nil
}

// ScanAll iterates every project in insertion (_id) order. Each call opens
// a new cursor. A storage error is yielded once and ends the sequence.
func (s *Store) ScanAll(ctx context.Context) iter.Seq2[models.Project, error] {
	return func(yield func(models.Project, error) bool) {
		opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
		cur, err := s.c.Find(ctx, bson.M{}, opts)
		if err != nil {
			yield(models.Project{}, accesserr.Storage("scan projects", err))
			return
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var p models.Project
			if err := cur.Decode(&p); err != nil {
				yield(models.Project{}, accesserr.Storage("decode project", err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(models.Project{}, accesserr.Storage("scan projects", err))
		}
	}
}

// CountByOwner returns how many projects ownerID owns.
func (s *Store) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, accesserr.Storage("count projects", err)
	}
	return n, nil
}
