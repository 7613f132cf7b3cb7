// Package client talks to the study API on behalf of a participant station.
// Calls are never retried; the station surfaces failures and the participant
// decides whether to try again.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"rscasurvey/internal/model"
)

// ErrNotFound matches an APIError with status 404
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the API
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a 404
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client wraps the study API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL, e.g. http://localhost:8080/api
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// doRequest sends body as JSON and decodes the response into out when out is not nil
func (c *Client) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Client] ERROR: %s %s failed: %v", method, path, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Path: path, Status: resp.StatusCode, Message: string(respBody)}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		log.Printf("[Client] ERROR: %v", apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse %s %s response: %w", method, path, err)
	}
	return nil
}

// ListQuestions returns the question bank in id order
func (c *Client) ListQuestions(ctx context.Context) ([]model.Question, error) {
	var questions []model.Question
	if err := c.doRequest(ctx, http.MethodGet, "/questions", nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// CreateSession returns the new session id
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var resp model.CreateSessionResponse
	if err := c.doRequest(ctx, http.MethodPost, "/sessions", nil, &resp); err != nil {
		return "", err
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("POST /sessions: empty sessionId")
	}
	return resp.SessionID, nil
}

// GetSession returns the session with its background profile expanded
func (c *Client) GetSession(ctx context.Context, sessionID string) (*model.SessionView, error) {
	var view model.SessionView
	if err := c.doRequest(ctx, http.MethodGet, "/sessions/"+sessionID, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) UpdateSession(ctx context.Context, sessionID string, update model.SessionUpdate) (*model.Session, error) {
	var session model.Session
	if err := c.doRequest(ctx, http.MethodPut, "/sessions/"+sessionID, update, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) SaveAnswer(ctx context.Context, sessionID string, req model.SubmitAnswerRequest) (*model.Session, error) {
	var session model.Session
	if err := c.doRequest(ctx, http.MethodPost, "/sessions/"+sessionID+"/answers", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) CompleteSession(ctx context.Context, sessionID string) (*model.Session, error) {
	var session model.Session
	if err := c.doRequest(ctx, http.MethodPost, "/sessions/"+sessionID+"/complete", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// StartEEG starts the recorder for a question
func (c *Client) StartEEG(ctx context.Context, sessionID string, questionID int) error {
	path := fmt.Sprintf("/sessions/%s/questions/%d/start-eeg", sessionID, questionID)
	return c.doRequest(ctx, http.MethodPost, path, nil, nil)
}

// StopEEG stops the recorder and returns the stored recording
func (c *Client) StopEEG(ctx context.Context, sessionID string, questionID int) (*model.EEGRecording, error) {
	path := fmt.Sprintf("/sessions/%s/questions/%d/stop-eeg", sessionID, questionID)
	var rec model.EEGRecording
	if err := c.doRequest(ctx, http.MethodPost, path, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
