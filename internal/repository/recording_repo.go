package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rscasurvey/internal/model"
)

// RecordingRepo persists EEG recording metadata
type RecordingRepo interface {
	Create(ctx context.Context, recording *model.EEGRecording) error
	ListBySession(ctx context.Context, sessionID string) ([]*model.EEGRecording, error)
}

type recordingRepo struct {
	collection *mongo.Collection
}

// NewRecordingRepo creates a recording repository indexed by session
func NewRecordingRepo(db *mongo.Database) RecordingRepo {
	r := &recordingRepo{
		collection: db.Collection("eegrecordings"),
	}
	createIndex(context.Background(), r.collection, bson.D{
		{Key: "sessionId", Value: 1},
		{Key: "questionId", Value: 1},
	}, false)
	return r
}

func (r *recordingRepo) Create(ctx context.Context, recording *model.EEGRecording) error {
	if recording.ID == "" {
		recording.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.collection.InsertOne(ctx, recording)
	return err
}

func (r *recordingRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.EEGRecording, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recordedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	recordings := []*model.EEGRecording{}
	if err := cursor.All(ctx, &recordings); err != nil {
		return nil, err
	}
	return recordings, nil
}
