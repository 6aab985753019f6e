// internal/app/features/projects/handler.go
package projects

import (
	apierrors "github.com/dalemusser/projecthub/internal/app/features/errors"
	projectstore "github.com/dalemusser/projecthub/internal/app/store/projects"
	"github.com/dalemusser/projecthub/internal/app/store/queries/projectlist"
	userstore "github.com/dalemusser/projecthub/internal/app/store/users"
	"github.com/dalemusser/projecthub/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the projects feature.
// The list, view, edit, participant and progress handlers all go through
// the same stores and the same error writer.
type Handler struct {
	DB       *mongo.Database
	Projects *projectstore.Store
	Users    *userstore.Store
	Listing  *projectlist.Query
	ErrLog   *apierrors.ErrorLogger
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// NewHandler wires the stores over db. m may be nil.
func NewHandler(db *mongo.Database, errLog *apierrors.ErrorLogger, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if errLog == nil {
		errLog = apierrors.NewErrorLogger(logger)
	}
	projects := projectstore.New(db)
	users := userstore.New(db)
	return &Handler{
		DB:       db,
		Projects: projects,
		Users:    users,
		Listing:  projectlist.New(projects, users, logger),
		ErrLog:   errLog,
		Metrics:  m,
		Log:      logger,
	}
}
