package source

import (
	"context"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
)

// Collection names read by [Mongo].
const (
	CharactersCollection = "characters"
	RelationsCollection  = "relations"
)

// MongoOptions configures [NewMongo].
type MongoOptions struct {
	URI      string
	Database string
	Timeout  time.Duration // connect and ping timeout; 10s when zero
}

// Mongo reads documents whose project_id matches the requested project.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	hosts  string
}

// NewMongo connects and pings the server.
func NewMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.Database == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo database name is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	m := NewMongoFromClient(client, opts.Database)
	m.hosts = mongoHosts(opts.URI)
	return m, nil
}

// mongoHosts returns the host list of uri without credentials.
func mongoHosts(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return u.Host
}

// NewMongoFromClient wraps an existing client.
func NewMongoFromClient(client *mongo.Client, database string) *Mongo {
	return &Mongo{client: client, db: client.Database(database)}
}

func (*Mongo) Name() string { return "mongo" }

// Scope names the cluster and database the datasets are read from.
func (m *Mongo) Scope() string { return "mongo:" + m.hosts + "/" + m.db.Name() }

// Load queries both collections concurrently. A project with no
// characters is reported as NOT_FOUND.
func (m *Mongo) Load(ctx context.Context, project string) (graph.Dataset, error) {
	return observe(ctx, m.Name(), project, func() (graph.Dataset, error) {
		var ds graph.Dataset
		filter := bson.M{"project_id": project}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return findAll(gctx, m.db.Collection(CharactersCollection), filter, &ds.Characters)
		})
		g.Go(func() error {
			return findAll(gctx, m.db.Collection(RelationsCollection), filter, &ds.Relations)
		})
		if err := g.Wait(); err != nil {
			return graph.Dataset{}, err
		}
		if len(ds.Characters) == 0 {
			return graph.Dataset{}, errors.New(errors.ErrCodeNotFound, "project %q has no characters", project)
		}
		return ds, nil
	})
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "find %s", coll.Name())
	}
	if err := cur.All(ctx, out); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", coll.Name())
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Source = (*Mongo)(nil)
