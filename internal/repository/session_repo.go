package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rscasurvey/internal/model"
)

// SessionRepo persists participant sessions keyed by sessionId
type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*model.Session, error)
	UpdateMetadata(ctx context.Context, sessionID string, update model.SessionUpdate) (*model.Session, error)
	UpsertAnswer(ctx context.Context, sessionID string, answer model.Answer) (*model.Session, error)
	Complete(ctx context.Context, sessionID string, endTime time.Time) (*model.Session, error)
	SetBackgroundProfile(ctx context.Context, sessionID, profileID string) error
	LinkRecording(ctx context.Context, sessionID string, questionID int, recordingID string) (bool, error)
	SetVignetteRecording(ctx context.Context, sessionID, recordingID string) error
	CountByProfile(ctx context.Context, profileID string) (int64, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a session repository with a unique index on sessionId
func NewSessionRepo(db *mongo.Database) SessionRepo {
	r := &sessionRepo{
		collection: db.Collection("sessions"),
	}
	createIndex(context.Background(), r.collection, bson.D{{Key: "sessionId", Value: 1}}, true)
	return r
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	// $push needs an array, never null
	if session.Answers == nil {
		session.Answers = []model.Answer{}
	}
	_, err := r.collection.InsertOne(ctx, session)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) UpdateMetadata(ctx context.Context, sessionID string, update model.SessionUpdate) (*model.Session, error) {
	set := bson.M{}
	if update.SurveyType != "" {
		set["surveyType"] = update.SurveyType
	}
	if update.VignetteType != "" {
		set["vignetteType"] = update.VignetteType
	}
	return r.findOneAndUpdate(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": set})
}

// UpsertAnswer replaces the answer for the question in place, or pushes it when the
// session has none yet. Both branches are single-document atomic updates, so a
// resubmission never produces a second entry for the same question.
func (r *sessionRepo) UpsertAnswer(ctx context.Context, sessionID string, answer model.Answer) (*model.Session, error) {
	for attempt := 0; attempt < 2; attempt++ {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"sessionId": sessionID, "answers.questionId": answer.QuestionID},
			bson.M{"$set": bson.M{
				"answers.$.answer":    answer.Answer,
				"answers.$.timeSpent": answer.TimeSpent,
			}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount > 0 {
			return r.GetBySessionID(ctx, sessionID)
		}

		res, err = r.collection.UpdateOne(ctx,
			bson.M{"sessionId": sessionID, "answers.questionId": bson.M{"$ne": answer.QuestionID}},
			bson.M{"$push": bson.M{"answers": answer}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount > 0 {
			return r.GetBySessionID(ctx, sessionID)
		}
		// Either the session is missing or a concurrent push landed first; retry the $set once.
	}
	return nil, ErrNotFound
}

func (r *sessionRepo) Complete(ctx context.Context, sessionID string, endTime time.Time) (*model.Session, error) {
	return r.findOneAndUpdate(ctx,
		bson.M{"sessionId": sessionID},
		bson.M{"$set": bson.M{"completed": true, "endTime": endTime}},
	)
}

func (r *sessionRepo) SetBackgroundProfile(ctx context.Context, sessionID, profileID string) error {
	return r.updateOne(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": bson.M{"backgroundProfile": profileID}})
}

func (r *sessionRepo) LinkRecording(ctx context.Context, sessionID string, questionID int, recordingID string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"sessionId": sessionID, "answers.questionId": questionID},
		bson.M{"$set": bson.M{"answers.$.eegRecordingId": recordingID}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *sessionRepo) CountByProfile(ctx context.Context, profileID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"backgroundProfile": profileID})
}

func (r *sessionRepo) SetVignetteRecording(ctx context.Context, sessionID, recordingID string) error {
	return r.updateOne(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": bson.M{"vignetteRecordingId": recordingID}})
}

func (r *sessionRepo) updateOne(ctx context.Context, filter, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*model.Session, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var session model.Session
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
