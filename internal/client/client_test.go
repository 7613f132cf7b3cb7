package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rscasurvey/internal/model"
)

func TestClientRoundTrips(t *testing.T) {
	var gotAnswer model.SubmitAnswerRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/questions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]model.Question{{ID: 1, Text: "q1", Type: model.QuestionTypeLikert}})
	})
	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.CreateSessionResponse{SessionID: "abc"})
	})
	mux.HandleFunc("/api/sessions/abc/answers", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotAnswer))
		json.NewEncoder(w).Encode(model.Session{SessionID: "abc", Answers: []model.Answer{{QuestionID: 1, Answer: "Agree"}}})
	})
	mux.HandleFunc("/api/sessions/abc/questions/1/stop-eeg", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.EEGRecording{ID: "rec", SessionID: "abc", QuestionID: 1})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL+"/api/", 2*time.Second)
	ctx := context.Background()

	qs, err := c.ListQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, model.QuestionTypeLikert, qs[0].Type)

	id, err := c.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)

	session, err := c.SaveAnswer(ctx, "abc", model.SubmitAnswerRequest{QuestionID: 1, Answer: "Agree", TimeSpent: 1500})
	require.NoError(t, err)
	assert.Len(t, session.Answers, 1)
	assert.Equal(t, model.SubmitAnswerRequest{QuestionID: 1, Answer: "Agree", TimeSpent: 1500}, gotAnswer)

	rec, err := c.StopEEG(ctx, "abc", 1)
	require.NoError(t, err)
	assert.Equal(t, "rec", rec.ID)
}

func TestClientMapsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions/missing/complete":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"session not found"}`))
		default:
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"no active recording"}`))
		}
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second)
	ctx := context.Background()

	_, err := c.CompleteSession(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "session not found", apiErr.Message)

	_, err = c.StopEEG(ctx, "s", 3)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(url, time.Second).StartEEG(context.Background(), "s", 1)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
