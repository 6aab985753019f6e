// Package projectlist answers "which projects can this viewer see, and how are
// they grouped". Every project is classified with projectpolicy.ComputeAccess,
// split into Mine (has access) and Others, and grouped by owner display name.
//
// Entries only ever carry Summary fields. Description, participants, metadata
// and progress stay behind projectpolicy.AuthorizeView.
package projectlist

import (
	"context"
	"iter"

	"github.com/dalemusser/projecthub/internal/app/policy/projectpolicy"
	"github.com/dalemusser/projecthub/internal/app/system/ident"
	"github.com/dalemusser/projecthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UnknownOwner labels the group for projects whose owner record is missing.
const UnknownOwner = "Unknown Owner"

// ProjectSource yields every project. Each call starts a fresh scan.
type ProjectSource interface {
	ScanAll(ctx context.Context) iter.Seq2[models.Project, error]
}

// OwnerDirectory resolves user ids to display names. Ids with no user are
// simply absent from the result.
type OwnerDirectory interface {
	NamesByID(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error)
}

// Summary is the per-project row shown in listings.
type Summary struct {
	ID        primitive.ObjectID   `json:"id"`
	Name      string               `json:"name"`
	Status    models.ProjectStatus `json:"status"`
	HasAccess bool                 `json:"has_access"`
	IsOwner   bool                 `json:"is_owner"`
}

// OwnerGroup is a run of summaries sharing one owner display name.
type OwnerGroup struct {
	OwnerName string    `json:"owner_name"`
	Projects  []Summary `json:"projects"`
}

// Listing is the partitioned result.
type Listing struct {
	Mine   []OwnerGroup `json:"mine"`
	Others []OwnerGroup `json:"others"`
}

// Query runs the listing against a project source and an owner directory.
type Query struct {
	Projects ProjectSource
	Owners   OwnerDirectory
	Log      *zap.Logger
}

// New constructs a Query.
func New(projects ProjectSource, owners OwnerDirectory, logger *zap.Logger) *Query {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Query{Projects: projects, Owners: owners, Log: logger}
}

// List scans all projects and partitions them for requester. Pass
// ident.Anonymous for a caller with no identity. Scan and lookup errors are
// returned unchanged; no partial listing is produced.
func (q *Query) List(ctx context.Context, requester primitive.ObjectID) (Listing, error) {
	b := newBuilder(requester)
	for p, err := range q.Projects.ScanAll(ctx) {
		if err != nil {
			return Listing{}, err
		}
		b.add(p)
	}

	names, err := q.Owners.NamesByID(ctx, b.ownerIDs())
	if err != nil {
		return Listing{}, err
	}

	out := b.finish(names)
	q.Log.Debug("project listing built",
		zap.Bool("anonymous", ident.IsAnonymous(requester)),
		zap.Int("mine_groups", len(out.Mine)),
		zap.Int("other_groups", len(out.Others)))
	return out, nil
}

// Partition classifies projects for requester without touching storage.
// ownerNames maps owner ids to display names; missing ids group under
// UnknownOwner.
func Partition(projects []models.Project, ownerNames map[primitive.ObjectID]string, requester primitive.ObjectID) Listing {
	b := newBuilder(requester)
	for _, p := range projects {
		b.add(p)
	}
	return b.finish(ownerNames)
}

// builder holds classified summaries in scan order. Full documents are not
// retained; only the owner id is needed until names are resolved.
type builder struct {
	requester primitive.ObjectID
	entries   []entry
	owners    []primitive.ObjectID
	seen      map[primitive.ObjectID]struct{}
}

type entry struct {
	owner   primitive.ObjectID
	mine    bool
	summary Summary
}

func newBuilder(requester primitive.ObjectID) *builder {
	return &builder{
		requester: requester,
		seen:      make(map[primitive.ObjectID]struct{}),
	}
}

func (b *builder) add(p models.Project) {
	av := projectpolicy.ComputeAccess(p, b.requester)
	b.entries = append(b.entries, entry{
		owner: p.OwnerID,
		mine:  av.HasAccess,
		summary: Summary{
			ID:        p.ID,
			Name:      p.Name,
			Status:    p.Status,
			HasAccess: av.HasAccess,
			IsOwner:   av.IsOwner,
		},
	})
	if _, ok := b.seen[p.OwnerID]; !ok {
		b.seen[p.OwnerID] = struct{}{}
		b.owners = append(b.owners, p.OwnerID)
	}
}

func (b *builder) ownerIDs() []primitive.ObjectID {
	return b.owners
}

func (b *builder) finish(names map[primitive.ObjectID]string) Listing {
	mine := newGrouper()
	others := newGrouper()
	for _, e := range b.entries {
		name, ok := names[e.owner]
		if !ok || name == "" {
			name = UnknownOwner
		}
		if e.mine {
			mine.add(name, e.summary)
		} else {
			others.add(name, e.summary)
		}
	}
	return Listing{Mine: mine.groups, Others: others.groups}
}

// grouper appends summaries to groups in order of first appearance.
type grouper struct {
	groups []OwnerGroup
	index  map[string]int
}

func newGrouper() *grouper {
	return &grouper{groups: []OwnerGroup{}, index: make(map[string]int)}
}

func (g *grouper) add(name string, s Summary) {
	i, ok := g.index[name]
	if !ok {
		i = len(g.groups)
		g.index[name] = i
		g.groups = append(g.groups, OwnerGroup{OwnerName: name})
	}
	g.groups[i].Projects = append(g.groups[i].Projects, s)
}
