// Package projectmembers lists the people on a project (its owner and
// participants) joined with their user records.
package projectmembers

import (
	"context"

	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	RoleOwner       = "owner"
	RoleParticipant = "participant"
)

// Person is the public projection of a user on a project.
type Person struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
}

type ProjectMember struct {
	User Person `bson:"user" json:"user"`
	Role string `bson:"role" json:"role"`
}

// List returns the owner followed by participants ordered by name_ci then
// _id. Ids with no user record are dropped. A missing project yields an
// empty list; callers load the project first to authorize.
func List(ctx context.Context, db *mongo.Database, projectID primitive.ObjectID) ([]ProjectMember, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": projectID}}},
		bson.D{{Key: "$project", Value: bson.M{
			"members": bson.M{"$concatArrays": bson.A{
				bson.A{bson.M{"id": "$owner_id", "role": RoleOwner}},
				bson.M{"$map": bson.M{
					"input": bson.M{"$ifNull": bson.A{"$participants", bson.A{}}},
					"as":    "p",
					"in":    bson.M{"id": "$$p", "role": RoleParticipant},
				}},
			}},
		}}},
		bson.D{{Key: "$unwind", Value: "$members"}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "members.id",
			"foreignField": "_id",
			"as":           "user",
		}}},
		bson.D{{Key: "$unwind", Value: "$user"}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"role_rank": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$members.role", RoleOwner}}, 0, 1,
			}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{
			{Key: "role_rank", Value: 1},
			{Key: "user.name_ci", Value: 1},
			{Key: "user._id", Value: 1},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":        0,
			"role":       "$members.role",
			"user._id":   1,
			"user.name":  1,
			"user.email": 1,
		}}},
	}

	cur, err := db.Collection("projects").Aggregate(ctx, pipe)
	if err != nil {
		return nil, accesserr.Storage("list project members", err)
	}
	defer cur.Close(ctx)

	var out []ProjectMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, accesserr.Storage("decode project members", err)
	}
	if out == nil {
		out = []ProjectMember{}
	}
	return out, nil
}
