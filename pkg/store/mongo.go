package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/irvaudit/pkg/raire"
)

// MongoStore archives records in a MongoDB collection, for service
// deployments where several instances share one archive.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig configures the MongoDB connection.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // defaults to "irvaudit"
	Collection string // defaults to "records"
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "irvaudit"
	}
	if cfg.Collection == "" {
		cfg.Collection = "records"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb at %s: %w", cfg.URI, err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// mongoRecord is the stored document. Problem and solution are embedded as
// JSON text: their Go types carry interface-valued fields the BSON codec
// cannot round-trip, and the archive only ever reads them whole.
type mongoRecord struct {
	ID             string    `bson:"_id"`
	Contest        string    `bson:"contest"`
	Problem        string    `bson:"problem"`
	Solution       string    `bson:"solution"`
	Winner         int       `bson:"winner"`
	AssertionCount int       `bson:"assertion_count"`
	Difficulty     float64   `bson:"difficulty"`
	Margin         int       `bson:"margin"`
	CreatedAt      time.Time `bson:"created_at"`
}

func toMongoRecord(r *Record) (*mongoRecord, error) {
	problem, err := json.Marshal(r.Problem)
	if err != nil {
		return nil, fmt.Errorf("encode problem: %w", err)
	}
	solution, err := json.Marshal(r.Solution)
	if err != nil {
		return nil, fmt.Errorf("encode solution: %w", err)
	}
	summary := summarize(r)
	return &mongoRecord{
		ID:             r.ID,
		Contest:        r.Contest,
		Problem:        string(problem),
		Solution:       string(solution),
		Winner:         summary.Winner,
		AssertionCount: summary.AssertionCount,
		Difficulty:     summary.Difficulty,
		Margin:         summary.Margin,
		CreatedAt:      r.CreatedAt,
	}, nil
}

func fromMongoRecord(m *mongoRecord) (*Record, error) {
	record := &Record{
		ID:        m.ID,
		Contest:   m.Contest,
		CreatedAt: m.CreatedAt,
	}
	if m.Problem != "" {
		record.Problem = &raire.Problem{}
		if err := json.Unmarshal([]byte(m.Problem), record.Problem); err != nil {
			return nil, fmt.Errorf("decode problem of %s: %w", m.ID, err)
		}
	}
	if m.Solution != "" {
		record.Solution = &raire.Result{}
		if err := json.Unmarshal([]byte(m.Solution), record.Solution); err != nil {
			return nil, fmt.Errorf("decode solution of %s: %w", m.ID, err)
		}
	}
	return record, nil
}

// Put implements Store.
func (s *MongoStore) Put(ctx context.Context, record *Record) error {
	doc, err := toMongoRecord(record)
	if err != nil {
		return err
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	var doc mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return fromMongoRecord(&doc)
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"problem": 0, "solution": 0})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer cursor.Close(ctx)

	var summaries []Summary
	for cursor.Next(ctx) {
		var doc mongoRecord
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		summaries = append(summaries, Summary{
			ID:             doc.ID,
			Contest:        doc.Contest,
			Winner:         doc.Winner,
			AssertionCount: doc.AssertionCount,
			Difficulty:     doc.Difficulty,
			Margin:         doc.Margin,
			CreatedAt:      doc.CreatedAt,
		})
	}
	return summaries, cursor.Err()
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
