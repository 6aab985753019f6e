// internal/app/features/projects/types.go
package projects

import (
	"github.com/dalemusser/projecthub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/projecthub/internal/app/store/queries/projectlist"
	"github.com/dalemusser/projecthub/internal/app/system/normalize"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const unknownOwner = projectlist.UnknownOwner

type createRequest struct {
	Name        string `json:"name" validate:"required,max=200" label:"Name"`
	Description string `json:"description" validate:"max=5000" label:"Description"`
	Status      string `json:"status" validate:"omitempty,oneof=pending active completed" label:"Status"`
}

func (c *createRequest) normalize() {
	c.Name = normalize.Name(c.Name)
	c.Status = normalize.Status(c.Status)
}

// editRequest carries only the fields present in the body.
type editRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200" label:"Name"`
	Description *string `json:"description" validate:"omitempty,max=5000" label:"Description"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active completed" label:"Status"`
}

func (s *statusRequest) normalize() { s.Status = normalize.Status(s.Status) }

type infoRequest struct {
	Info map[string]any `json:"info" validate:"required" label:"Info"`
}

type participantRequest struct {
	UserID string `json:"user_id" validate:"required,objectid" label:"User"`
}

type progressRequest struct {
	Text string `json:"text" validate:"required,max=5000" label:"Progress"`
}

// projectView is the full document returned to owners and participants.
type projectView struct {
	models.Project
	OwnerName string                   `json:"owner_name"`
	Access    projectpolicy.AccessView `json:"access"`
}

type createdResponse struct {
	Message   string             `json:"message"`
	ProjectID primitive.ObjectID `json:"project_id"`
}

type userView struct {
	ID    primitive.ObjectID `json:"id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
}

type usersResponse struct {
	Users []userView `json:"users"`
}
