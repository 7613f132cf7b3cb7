package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	_ "rscasurvey/docs"
	"rscasurvey/internal/cache"
	"rscasurvey/internal/config"
	"rscasurvey/internal/repository"
	"rscasurvey/internal/service"
	"rscasurvey/internal/transport/rest"
)

// stores bundles the repositories of one driver
type stores struct {
	questions  repository.QuestionRepo
	sessions   repository.SessionRepo
	profiles   repository.ProfileRepo
	recordings repository.RecordingRepo
	close      func(ctx context.Context)
}

func openMongo(ctx context.Context, cfg *config.ServerConfig) *stores {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Printf("Connected to MongoDB (%s)", cfg.MongoDatabase)

	db := mongoClient.Database(cfg.MongoDatabase)
	return &stores{
		questions:  repository.NewQuestionRepo(db),
		sessions:   repository.NewSessionRepo(db),
		profiles:   repository.NewProfileRepo(db),
		recordings: repository.NewRecordingRepo(db),
		close: func(ctx context.Context) {
			mongoClient.Disconnect(ctx)
		},
	}
}

func openMemory() *stores {
	log.Println("Warning: using in-memory store, data is lost on exit")
	m := repository.NewMemoryStore()
	return &stores{
		questions:  m.Questions(),
		sessions:   m.Sessions(),
		profiles:   m.Profiles(),
		recordings: m.Recordings(),
		close:      func(context.Context) {},
	}
}

// @title RSCA Survey API
// @version 1.0
// @description Belonging questionnaire sessions with per-question EEG recording
// @host localhost:8080
// @BasePath /api
func main() {
	ctx := context.Background()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal(err)
	}

	var st *stores
	if cfg.StoreDriver == "memory" {
		st = openMemory()
	} else {
		st = openMongo(ctx, cfg)
	}
	defer st.close(context.Background())

	// Redis is optional; without it every read goes to the store
	var (
		sessionCache  cache.SessionCache
		statsCache    cache.StatsCache
		recorderCache cache.RecorderCache
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatal("Failed to ping Redis:", err)
		}
		log.Println("Connected to Redis")

		sessionCache = cache.NewSessionCache(rdb)
		statsCache = cache.NewStatsCache(rdb)
		recorderCache = cache.NewRecorderCache(rdb)
	} else {
		log.Println("Warning: redis.addr not set, caching disabled")
	}

	if err := os.MkdirAll(cfg.EEG.OutputDir, 0o755); err != nil {
		log.Fatal("Failed to create recording directory:", err)
	}

	// Initialize services
	questionSvc := service.NewQuestionService(st.questions)
	seeded, err := questionSvc.SeedIfEmpty(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if seeded > 0 {
		log.Printf("Seeded %d questions", seeded)
	}

	profileSvc := service.NewProfileService(st.profiles, statsCache)
	sessionSvc := service.NewSessionService(st.sessions, st.recordings, questionSvc, profileSvc, sessionCache)
	recorderSvc := service.NewRecorderService(
		service.RecorderConfig{OutputDir: cfg.EEG.OutputDir, StopTimeout: cfg.EEG.StopTimeout},
		service.NewExecLauncher(cfg.EEG.Command, cfg.EEG.Args),
		st.sessions, st.recordings, questionSvc, profileSvc, recorderCache, sessionCache,
	)
	recorderSvc.Recover(ctx)

	router := rest.NewRouter(&rest.Container{
		QuestionService: questionSvc,
		SessionService:  sessionSvc,
		ProfileService:  profileSvc,
		RecorderService: recorderSvc,
		CORSOrigins:     cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  GET  /api/questions")
		log.Println("  POST /api/sessions")
		log.Println("  GET/PUT /api/sessions/{id}")
		log.Println("  POST /api/sessions/{id}/answers")
		log.Println("  POST /api/sessions/{id}/complete")
		log.Println("  POST /api/sessions/{id}/questions/{qid}/start-eeg")
		log.Println("  POST /api/sessions/{id}/questions/{qid}/stop-eeg")
		log.Println("  GET  /api/background-profiles/stats")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server forced to shutdown:", err)
	}
	recorderSvc.Shutdown(shutdownCtx)

	log.Println("Server exited")
}
