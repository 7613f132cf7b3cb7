package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rscasurvey/internal/client"
	"rscasurvey/internal/model"
	"rscasurvey/internal/questionbank"
	"rscasurvey/internal/repository"
	"rscasurvey/internal/service"
)

type stubProcess struct {
	pid     int
	stopped bool
}

func (p *stubProcess) Pid() int { return p.pid }

func (p *stubProcess) Stop(timeout time.Duration) error {
	p.stopped = true
	return nil
}

type stubLauncher struct {
	mu    sync.Mutex
	procs []*stubProcess
}

func (l *stubLauncher) Launch(ctx context.Context, outputPath string) (service.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := &stubProcess{pid: len(l.procs) + 1}
	l.procs = append(l.procs, p)
	return p, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *client.Client) {
	t.Helper()
	store := repository.NewMemoryStore()
	questions := service.NewQuestionService(store.Questions())
	_, err := questions.SeedIfEmpty(context.Background())
	require.NoError(t, err)

	profiles := service.NewProfileService(store.Profiles(), nil)
	sessions := service.NewSessionService(store.Sessions(), store.Recordings(), questions, profiles, nil)
	recorder := service.NewRecorderService(
		service.RecorderConfig{OutputDir: t.TempDir(), StopTimeout: time.Second},
		&stubLauncher{}, store.Sessions(), store.Recordings(), questions, profiles, nil, nil,
	)

	srv := httptest.NewServer(NewRouter(&Container{
		QuestionService: questions,
		SessionService:  sessions,
		ProfileService:  profiles,
		RecorderService: recorder,
		CORSOrigins:     []string{"http://localhost:3000"},
	}))
	t.Cleanup(srv.Close)
	return srv, client.New(srv.URL+"/api", 5*time.Second)
}

func do(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestListQuestionsReturnsBankInOrder(t *testing.T) {
	_, c := newTestServer(t)
	questions, err := c.ListQuestions(context.Background())
	require.NoError(t, err)
	require.Len(t, questions, len(questionbank.Questions()))
	for i, q := range questions {
		assert.Equal(t, i+1, q.ID)
	}
}

func TestCreateSessionReturns201(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/sessions", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body model.CreateSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.SessionID)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	_, c := newTestServer(t)

	id, err := c.CreateSession(ctx)
	require.NoError(t, err)

	updated, err := c.UpdateSession(ctx, id, model.SessionUpdate{SurveyType: model.StudyWithParsons, VignetteType: model.VignetteGrowth})
	require.NoError(t, err)
	assert.Equal(t, model.StudyWithParsons, updated.SurveyType)
	assert.Equal(t, model.VignetteGrowth, updated.VignetteType)

	_, err = c.SaveAnswer(ctx, id, model.SubmitAnswerRequest{QuestionID: 1, Answer: "Agree", TimeSpent: 2000})
	require.NoError(t, err)
	session, err := c.SaveAnswer(ctx, id, model.SubmitAnswerRequest{QuestionID: 1, Answer: "Neutral", TimeSpent: 3000})
	require.NoError(t, err)
	require.Len(t, session.Answers, 1)
	assert.Equal(t, "Neutral", session.Answers[0].Answer)

	_, err = c.SaveAnswer(ctx, id, model.SubmitAnswerRequest{QuestionID: 38, Answer: "21", TimeSpent: 1500})
	require.NoError(t, err)

	view, err := c.GetSession(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, view.BackgroundProfile)
	require.NotNil(t, view.BackgroundProfile.Age)
	assert.Equal(t, 21, *view.BackgroundProfile.Age)
	assert.Len(t, view.Answers, 1)

	done, err := c.CompleteSession(ctx, id)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.NotNil(t, done.EndTime)
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()
	srv, c := newTestServer(t)
	id, err := c.CreateSession(ctx)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown session", http.MethodGet, "/api/sessions/missing", nil, http.StatusNotFound},
		{"unknown question", http.MethodPost, "/api/sessions/" + id + "/answers", model.SubmitAnswerRequest{QuestionID: 999, Answer: "x"}, http.StatusNotFound},
		{"missing question id", http.MethodPost, "/api/sessions/" + id + "/answers", map[string]string{"answer": "x"}, http.StatusBadRequest},
		{"negative time", http.MethodPost, "/api/sessions/" + id + "/answers", model.SubmitAnswerRequest{QuestionID: 1, TimeSpent: -5}, http.StatusBadRequest},
		{"bad study", http.MethodPut, "/api/sessions/" + id, map[string]string{"surveyType": "often"}, http.StatusBadRequest},
		{"bad qid", http.MethodPost, "/api/sessions/" + id + "/questions/abc/start-eeg", nil, http.StatusBadRequest},
		{"stop without start", http.MethodPost, "/api/sessions/" + id + "/questions/1/stop-eeg", nil, http.StatusConflict},
		{"start for unknown session", http.MethodPost, "/api/sessions/missing/questions/1/start-eeg", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, srv.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestEEGStartStopLinksAnswer(t *testing.T) {
	ctx := context.Background()
	srv, c := newTestServer(t)
	id, err := c.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, c.StartEEG(ctx, id, questionbank.VignetteQuestionID))
	rec, err := c.StopEEG(ctx, id, questionbank.VignetteQuestionID)
	require.NoError(t, err)
	assert.Equal(t, questionbank.VignetteQuestionID, rec.QuestionID)

	require.NoError(t, c.StartEEG(ctx, id, 1))

	resp := do(t, http.MethodGet, srv.URL+"/api/eeg/status", nil)
	var status struct {
		Recording bool               `json:"recording"`
		Active    *model.RecorderSlot `json:"active"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Recording)
	require.NotNil(t, status.Active)
	assert.Equal(t, 1, status.Active.QuestionID)

	_, err = c.SaveAnswer(ctx, id, model.SubmitAnswerRequest{QuestionID: 1, Answer: "Agree", TimeSpent: 900})
	require.NoError(t, err)
	rec, err = c.StopEEG(ctx, id, 1)
	require.NoError(t, err)

	view, err := c.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, view.Answers[0].EEGRecordingID)
	assert.NotEmpty(t, view.VignetteRecordingID)

	resp = do(t, http.MethodGet, srv.URL+"/api/sessions/"+id+"/eeg-recordings", nil)
	var recordings []model.EEGRecording
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recordings))
	assert.Len(t, recordings, 2)
}

func TestStatsCountsProfiles(t *testing.T) {
	ctx := context.Background()
	srv, c := newTestServer(t)
	id, err := c.CreateSession(ctx)
	require.NoError(t, err)
	_, err = c.SaveAnswer(ctx, id, model.SubmitAnswerRequest{QuestionID: 38, Answer: 30})
	require.NoError(t, err)
	_, err = c.SaveAnswer(ctx, id, model.SubmitAnswerRequest{QuestionID: 40, Answer: "Woman"})
	require.NoError(t, err)

	resp := do(t, http.MethodGet, srv.URL+"/api/background-profiles/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats model.ProfileStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 30.0, stats.AverageAge)
	assert.Equal(t, 1, stats.GenderDistribution["Woman"])
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/sessions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/api/questions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}

func TestNotFoundNamesWhatIsMissing(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/api/sessions/nobody", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "session nobody: not found", body["error"])
}
