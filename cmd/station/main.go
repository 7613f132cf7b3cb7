package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"rscasurvey/internal/client"
	"rscasurvey/internal/config"
	"rscasurvey/internal/flow"
	"rscasurvey/internal/transport/ws"
)

func newRouter(controller *flow.Controller, hub *ws.Hub) http.Handler {
	r := mux.NewRouter()
	wsHandler := ws.NewHandler(hub, controller)

	r.HandleFunc("/ws", wsHandler.ServeWS).Methods("GET")

	r.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(controller.Snapshot())
	}).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func main() {
	cfg, err := config.LoadStation()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	hub := ws.NewHub()
	controller := flow.NewController(cfg.Flow, api, flow.RealClock{}, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: newRouter(controller, hub),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return controller.Run(gctx)
	})

	g.Go(func() error {
		log.Printf("Station starting on :%s (API %s)", cfg.HTTPPort, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down station...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Station stopped: %v", err)
		os.Exit(1)
	}
	log.Println("Station exited")
}
