package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rscasurvey/internal/config"
	"rscasurvey/internal/repository"
	"rscasurvey/internal/service"
)

func main() {
	onlyIfEmpty := flag.Bool("if-empty", false, "leave an existing question bank untouched")
	flag.Parse()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	questions := service.NewQuestionService(repository.NewQuestionRepo(client.Database(cfg.MongoDatabase)))

	var n int
	if *onlyIfEmpty {
		n, err = questions.SeedIfEmpty(ctx)
	} else {
		n, err = questions.Reseed(ctx)
	}
	if err != nil {
		log.Fatalf("Failed to seed questions: %v", err)
	}
	log.Printf("Inserted %d questions into %s.questions", n, cfg.MongoDatabase)
}
