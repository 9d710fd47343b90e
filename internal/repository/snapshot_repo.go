package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"intervue/internal/model"
)

// SnapshotRepo stores final session outcomes
type SnapshotRepo interface {
	Create(ctx context.Context, snapshot *model.SessionSnapshot) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.SessionSnapshot, error)
}

type snapshotRepo struct {
	collection *mongo.Collection
}

// NewSnapshotRepo creates a Mongo-backed snapshot repository
func NewSnapshotRepo(db *mongo.Database) SnapshotRepo {
	return &snapshotRepo{
		collection: db.Collection("session_snapshots"),
	}
}

func (r *snapshotRepo) Create(ctx context.Context, snapshot *model.SessionSnapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now()
	}
	result, err := r.collection.InsertOne(ctx, snapshot)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		snapshot.ID = oid.Hex()
	}
	return nil
}

func (r *snapshotRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.SessionSnapshot, error) {
	var snapshot model.SessionSnapshot
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}
