package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/swaggo/swag"

	"rscasurvey/internal/service"
	"rscasurvey/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	QuestionService *service.QuestionService
	SessionService  *service.SessionService
	ProfileService  *service.ProfileService
	RecorderService *service.RecorderService
	CORSOrigins     []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	questionHandler := handler.NewQuestionHandler(c.QuestionService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	profileHandler := handler.NewProfileHandler(c.ProfileService)
	eegHandler := handler.NewEEGHandler(c.RecorderService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/questions", questionHandler.List).Methods("GET", "OPTIONS")

	api.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/sessions/{id}", sessionHandler.Update).Methods("PUT", "OPTIONS")
	api.HandleFunc("/sessions/{id}/answers", sessionHandler.SubmitAnswer).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/complete", sessionHandler.Complete).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/eeg-recordings", sessionHandler.Recordings).Methods("GET", "OPTIONS")

	api.HandleFunc("/sessions/{id}/questions/{qid}/start-eeg", eegHandler.Start).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{id}/questions/{qid}/stop-eeg", eegHandler.Stop).Methods("POST", "OPTIONS")
	api.HandleFunc("/eeg/status", eegHandler.Status).Methods("GET", "OPTIONS")

	api.HandleFunc("/background-profiles/stats", profileHandler.Stats).Methods("GET", "OPTIONS")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}).Methods("GET")

	return r
}

func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowAll := len(origins) == 0
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
