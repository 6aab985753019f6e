// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/projecthub/internal/app/system/auth"
	"github.com/dalemusser/projecthub/internal/app/system/ident"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's name, ObjectID, and a found flag. With no
// resolved user (or a zero id) it returns "", Anonymous, false, so ok=true
// always means an authenticated caller with a usable id.
func UserCtx(r *http.Request) (name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || ident.IsAnonymous(user.ID) {
		return "", ident.Anonymous, false
	}
	return user.Name, user.ID, true
}

// Requester returns the caller's id, or Anonymous. Policy functions take
// this value directly.
func Requester(r *http.Request) primitive.ObjectID {
	_, id, _ := UserCtx(r)
	return id
}
