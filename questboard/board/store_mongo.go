package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const boardDocID = "questboard"

type boardDoc struct {
	ID     string           `bson:"_id"`
	Quests map[string]Quest `bson:"quests"`
}

// MongoStore keeps the board as a single document; ReplaceOne with upsert is
// the atomic whole-mapping write.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	names  []string
}

func NewMongoStore(ctx context.Context, uri, database string, names []string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("quest_board"),
		names:  names,
	}, nil
}

func (s *MongoStore) Load(ctx context.Context) (map[string]Quest, error) {
	res := s.coll.FindOne(ctx, bson.M{"_id": boardDocID})
	raw, err := res.Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return s.reset(ctx, "board document missing")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quest board: %w", err)
	}

	var doc boardDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		slog.Warn("Quest board document is corrupt, reinitializing",
			slog.String("type", "db"),
			slog.Any("error", err))
		return s.reset(ctx, "board document corrupt")
	}
	if doc.Quests == nil {
		doc.Quests = map[string]Quest{}
	}
	return repairLoaded(doc.Quests, s.names), nil
}

func (s *MongoStore) Save(ctx context.Context, quests map[string]Quest) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": boardDocID},
		boardDoc{ID: boardDocID, Quests: quests},
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save quest board: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) reset(ctx context.Context, reason string) (map[string]Quest, error) {
	slog.Warn("Initializing default quest board",
		slog.String("type", "db"),
		slog.String("reason", reason))
	quests := defaultQuests(s.names)
	if err := s.Save(ctx, quests); err != nil {
		return nil, err
	}
	return quests, nil
}
