package repository

import (
	"context"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"rscasurvey/internal/model"
)

// ProfileRepo persists deduplicated background profiles
type ProfileRepo interface {
	GetByID(ctx context.Context, id string) (*model.BackgroundProfile, error)
	FindByHash(ctx context.Context, hash string) (*model.BackgroundProfile, error)
	// Create returns ErrDuplicateProfile when the hash is already taken
	Create(ctx context.Context, profile *model.BackgroundProfile) error
	RecordTiming(ctx context.Context, id string, questionID int, timeSpent int64) error
	AddRecording(ctx context.Context, id string, ref model.RecordingRef) error
	List(ctx context.Context) ([]*model.BackgroundProfile, error)
	// RemoveRecordings drops the recording links made by one session
	RemoveRecordings(ctx context.Context, id, sessionID string) error
	Delete(ctx context.Context, id string) error
}

type profileRepo struct {
	collection *mongo.Collection
}

// NewProfileRepo creates a profile repository with a unique index on profileHash
func NewProfileRepo(db *mongo.Database) ProfileRepo {
	r := &profileRepo{
		collection: db.Collection("backgroundprofiles"),
	}
	createIndex(context.Background(), r.collection, bson.D{{Key: "profileHash", Value: 1}}, true)
	return r
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*model.BackgroundProfile, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *profileRepo) FindByHash(ctx context.Context, hash string) (*model.BackgroundProfile, error) {
	return r.findOne(ctx, bson.M{"profileHash": hash})
}

func (r *profileRepo) Create(ctx context.Context, profile *model.BackgroundProfile) error {
	if profile.ID == "" {
		profile.ID = primitive.NewObjectID().Hex()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, profile)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateProfile
	}
	return err
}

func (r *profileRepo) RecordTiming(ctx context.Context, id string, questionID int, timeSpent int64) error {
	key := "timeSpentOnQuestions." + strconv.Itoa(questionID)
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{key: timeSpent}})
}

func (r *profileRepo) AddRecording(ctx context.Context, id string, ref model.RecordingRef) error {
	return r.updateOne(ctx, id, bson.M{"$push": bson.M{"eegRecordings": ref}})
}

func (r *profileRepo) RemoveRecordings(ctx context.Context, id, sessionID string) error {
	return r.updateOne(ctx, id, bson.M{"$pull": bson.M{"eegRecordings": bson.M{"sessionId": sessionID}}})
}

func (r *profileRepo) List(ctx context.Context) ([]*model.BackgroundProfile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []*model.BackgroundProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *profileRepo) findOne(ctx context.Context, filter bson.M) (*model.BackgroundProfile, error) {
	var profile model.BackgroundProfile
	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
