package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rscasurvey/internal/model"
)

// QuestionRepo stores the question bank
type QuestionRepo interface {
	List(ctx context.Context) ([]*model.Question, error)
	GetByID(ctx context.Context, id int) (*model.Question, error)
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, questions []model.Question) error
	DeleteAll(ctx context.Context) error
}

type questionRepo struct {
	collection *mongo.Collection
}

// NewQuestionRepo creates a question repository with a unique index on id
func NewQuestionRepo(db *mongo.Database) QuestionRepo {
	r := &questionRepo{
		collection: db.Collection("questions"),
	}
	createIndex(context.Background(), r.collection, bson.D{{Key: "id", Value: 1}}, true)
	return r
}

func (r *questionRepo) List(ctx context.Context) ([]*model.Question, error) {
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	questions := []*model.Question{}
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepo) GetByID(ctx context.Context, id int) (*model.Question, error) {
	var q model.Question
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *questionRepo) InsertMany(ctx context.Context, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}
	docs := make([]interface{}, len(questions))
	for i := range questions {
		docs[i] = questions[i]
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

func (r *questionRepo) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
