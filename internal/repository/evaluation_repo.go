package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intervue/internal/model"
)

// EvaluationRepo durably appends transcript entries. Append is
// best-effort from the session's point of view: failures are logged by
// the caller, never surfaced to the candidate.
type EvaluationRepo interface {
	Append(ctx context.Context, record *model.EvaluationRecord) error
	GetBySessionID(ctx context.Context, sessionID string) ([]*model.EvaluationRecord, error)
}

type evaluationRepo struct {
	collection *mongo.Collection
}

// NewEvaluationRepo creates a Mongo-backed evaluation repository
func NewEvaluationRepo(db *mongo.Database) EvaluationRepo {
	return &evaluationRepo{
		collection: db.Collection("evaluations"),
	}
}

func (r *evaluationRepo) Append(ctx context.Context, record *model.EvaluationRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

func (r *evaluationRepo) GetBySessionID(ctx context.Context, sessionID string) ([]*model.EvaluationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.EvaluationRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
