// Package ident converts external identifier strings into the canonical
// identity type used everywhere else: primitive.ObjectID.
//
// Comparisons in the policy layer are plain == on ObjectID values. Nothing
// downstream of this package compares hex strings, and nothing downstream
// needs to care whether an id came from a URL, a JSON body, a token, or a
// Mongo document.
package ident

import (
	"fmt"
	"strings"

	"github.com/dalemusser/projecthub/internal/app/system/accesserr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Anonymous is the identity of a caller with no resolved user.
var Anonymous = primitive.NilObjectID

// Parse returns the canonical id for s. Surrounding whitespace is ignored and
// hex is case-insensitive. Malformed input and the all-zero id fail with
// ErrInvalidIdentifier; the zero id is reserved for Anonymous.
func Parse(s string) (primitive.ObjectID, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	oid, err := primitive.ObjectIDFromHex(v)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", accesserr.ErrInvalidIdentifier, s)
	}
	if oid.IsZero() {
		return primitive.NilObjectID, fmt.Errorf("%w: zero id", accesserr.ErrInvalidIdentifier)
	}
	return oid, nil
}

// IsAnonymous reports whether id carries no user.
func IsAnonymous(id primitive.ObjectID) bool {
	return id.IsZero()
}

// Contains reports whether id is present in ids.
func Contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
