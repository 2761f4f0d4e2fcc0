package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sereno-app/sereno-api/internal/config"
	"github.com/sereno-app/sereno-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollection = "chat_sessions"

// Client wraps the Mongo connection for the chat document store.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewClient connects to Mongo and verifies the connection.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &Client{client: client, db: client.Database(cfg.Database)}, nil
}

// Close disconnects from Mongo.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Ping verifies connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

// SessionRepository implements domain.SessionRepository over a Mongo
// collection. A session is one document with its messages embedded, so
// AppendExchange is a single atomic document update and no cross-request
// locking is needed.
type SessionRepository struct {
	coll *mongo.Collection
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(client *Client) *SessionRepository {
	return &SessionRepository{coll: client.db.Collection(sessionCollection)}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.ChatSession) error {
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// ownedFilter scopes every lookup by owner. A foreign session matches
// nothing, which callers surface as ErrNotFound.
func ownedFilter(id, ownerID uuid.UUID) bson.M {
	return bson.M{"_id": id, "owner_id": ownerID}
}

func (r *SessionRepository) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.ChatSession, error) {
	var session domain.ChatSession
	err := r.coll.FindOne(ctx, ownedFilter(id, ownerID)).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.ChatSession, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []domain.ChatSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) AppendExchange(ctx context.Context, id, ownerID uuid.UUID, userMsg, aiMsg domain.Message, topics []string) error {
	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": []domain.Message{userMsg, aiMsg}}},
		"$set": bson.M{
			"last_message": aiMsg,
			"updated_at":   time.Now().UTC(),
		},
	}
	if len(topics) > 0 {
		update["$addToSet"] = bson.M{"topics": bson.M{"$each": topics}}
	}

	result, err := r.coll.UpdateOne(ctx, ownedFilter(id, ownerID), update)
	if err != nil {
		return fmt.Errorf("failed to append messages: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, ownedFilter(id, ownerID))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
