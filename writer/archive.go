package writer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xyths/hs"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

//
// Archive is a secondary sink that receives a copy of every saved document.
//
type Archive interface {
	Store(ctx context.Context, kind Kind, name string, doc []byte) error
	Close(ctx context.Context) error
}

//
// ArchiveConfig configures the MongoDB archive. An empty URI disables archiving.
//
type ArchiveConfig struct {
	URI        string `yaml:"uri" json:"uri"`
	Database   string `yaml:"database" json:"database"`
	Collection string `yaml:"collection" json:"collection"`
}

//
// Enabled returns whether or not an archive was configured.
//
func (o ArchiveConfig) Enabled() bool {
	return o.URI != ""
}

const (
	defaultDatabase   = "exprobe"
	defaultCollection = "documents"
	stateCollection   = "state"
)

//
// MongoArchive stores documents in a MongoDB collection and remembers the latest file name of each
// kind in a key/value state collection.
//
type MongoArchive struct {
	client *mongo.Client
	docs   *mongo.Collection
	state  *mongo.Collection
}

//
// DialArchive connects to MongoDB and verifies that the server is reachable.
//
func DialArchive(ctx context.Context, cfg ArchiveConfig) (*MongoArchive, error) {
	if !cfg.Enabled() {
		return nil, errors.New("no archive URI configured")
	}

	if cfg.Database == "" {
		cfg.Database = defaultDatabase
	}

	if cfg.Collection == "" {
		cfg.Collection = defaultCollection
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the archive: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)

		return nil, fmt.Errorf("failed to reach the archive: %w", err)
	}

	db := client.Database(cfg.Database)

	return &MongoArchive{
		client: client,
		docs:   db.Collection(cfg.Collection),
		state:  db.Collection(stateCollection),
	}, nil
}

func (o *MongoArchive) Store(ctx context.Context, kind Kind, name string, doc []byte) error {
	var body bson.M
	if err := bson.UnmarshalExtJSON(doc, false, &body); err != nil {
		return fmt.Errorf("failed to convert %s to BSON: %w", name, err)
	}

	record := bson.D{
		{Key: "kind", Value: kind.String()},
		{Key: "file", Value: name},
		{Key: "archived_at", Value: time.Now().UTC()},
		{Key: "document", Value: body},
	}

	if _, err := o.docs.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to archive %s: %w", name, err)
	}

	return hs.SaveKey(ctx, o.state, "latest_"+kind.String(), name)
}

func (o *MongoArchive) Close(ctx context.Context) error {
	return o.client.Disconnect(ctx)
}
