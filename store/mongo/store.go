// Package mongo persists plan records and mappings in MongoDB.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"

	caravan "github.com/nevindra/caravan"
)

const defaultOpTimeout = 10 * time.Second

// Options configures the store.
type Options struct {
	Client   *mongodriver.Client
	Database string
	// Timeout bounds each write. Zero means defaultOpTimeout.
	Timeout time.Duration
}

// Store implements caravan.RecordStore on two collections keyed by plan id.
type Store struct {
	plans    *mongodriver.Collection
	mappings *mongodriver.Collection
	timeout  time.Duration
}

// NewStore builds a Store over the plans and mappings collections.
func NewStore(opts Options) (*Store, error) {
	if opts.Client == nil {
		return nil, errors.New("mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("database name is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	db := opts.Client.Database(opts.Database)
	return &Store{
		plans:    db.Collection(caravan.PlanCollectionName),
		mappings: db.Collection(caravan.PlanMappingCollectionName),
		timeout:  timeout,
	}, nil
}

// PutPlan inserts the record into the plans collection under its own id.
func (s *Store) PutPlan(ctx context.Context, record caravan.PlanRecord) error {
	return s.insert(ctx, s.plans, record.ID, record)
}

// PutMapping inserts the mapping into the mappings collection under the
// plan id.
func (s *Store) PutMapping(ctx context.Context, mapping caravan.PlanMapping) error {
	return s.insert(ctx, s.mappings, mapping.PlanID, mapping)
}

// insert stores v as a document with _id set to id. Values go through their
// JSON form first so the custom message-content encoding is preserved in
// the stored documents.
func (s *Store) insert(ctx context.Context, coll *mongodriver.Collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, true, &doc); err != nil {
		return fmt.Errorf("convert document: %w", err)
	}
	doc["_id"] = id

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

// Compile-time interface check.
var _ caravan.RecordStore = (*Store)(nil)
