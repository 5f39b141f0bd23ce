package installed

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stackpkg/pkg/errors"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// Defaults for MongoConfig.
const (
	DefaultMongoDatabase   = "stackpkg"
	DefaultMongoCollection = "installed"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string // Connection string, e.g. mongodb://localhost:27017
	Database   string // Database name (default: stackpkg)
	Collection string // Collection name (default: installed)
	Host       string // Install host; records are partitioned by host
}

// MongoStore keeps installed-set records in a MongoDB collection. Each
// document holds the TOML record of one package keyed by host and full name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	host   string
}

type mongoRecord struct {
	ID       string    `bson:"_id"`
	Host     string    `bson:"host"`
	Name     string    `bson:"name"`
	Version  string    `bson:"version"`
	Spec     string    `bson:"spec"`
	Recorded time.Time `bson:"recorded"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		host:   cfg.Host,
	}, nil
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Load implements Store.
func (m *MongoStore) Load(ctx context.Context) (*Set, error) {
	cur, err := m.coll.Find(ctx, bson.M{"host": m.host})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "query installed packages")
	}
	var records []mongoRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransport, err, "read installed packages")
	}

	set := NewSet()
	for _, r := range records {
		s, err := spec.Parse([]byte(r.Spec))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "record %s", r.ID)
		}
		set.Add(s)
	}
	return set, nil
}

// Record implements Store.
func (m *MongoStore) Record(ctx context.Context, s *spec.Spec) error {
	data, err := spec.Marshal(s)
	if err != nil {
		return err
	}
	rec := mongoRecord{
		ID:       m.id(s.FullName()),
		Host:     m.host,
		Name:     s.Name,
		Version:  s.Version.String(),
		Spec:     string(data),
		Recorded: time.Now().UTC(),
	}
	_, err = m.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransport, err, "record %s", s.FullName())
	}
	return nil
}

// Forget implements Store.
func (m *MongoStore) Forget(ctx context.Context, fullName string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": m.id(fullName)}); err != nil {
		return errors.Wrap(errors.ErrCodeTransport, err, "forget %s", fullName)
	}
	return nil
}

func (m *MongoStore) id(fullName string) string {
	if m.host == "" {
		return fullName
	}
	return m.host + "/" + fullName
}
