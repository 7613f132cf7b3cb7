package repository

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"rscasurvey/internal/model"
)

// MemoryStore backs every repository with process-local maps.
// It is selected with the "memory" store driver and used by tests.
type MemoryStore struct {
	mu         sync.RWMutex
	questions  map[int]model.Question
	sessions   map[string]*model.Session
	profiles   map[string]*model.BackgroundProfile
	byHash     map[string]string
	recordings []*model.EEGRecording
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		questions: make(map[int]model.Question),
		sessions:  make(map[string]*model.Session),
		profiles:  make(map[string]*model.BackgroundProfile),
		byHash:    make(map[string]string),
	}
}

// Questions returns the store as a QuestionRepo
func (m *MemoryStore) Questions() QuestionRepo { return memoryQuestions{m} }

// Sessions returns the store as a SessionRepo
func (m *MemoryStore) Sessions() SessionRepo { return memorySessions{m} }

// Profiles returns the store as a ProfileRepo
func (m *MemoryStore) Profiles() ProfileRepo { return memoryProfiles{m} }

// Recordings returns the store as a RecordingRepo
func (m *MemoryStore) Recordings() RecordingRepo { return memoryRecordings{m} }

type memoryQuestions struct{ m *MemoryStore }

func (r memoryQuestions) List(ctx context.Context) ([]*model.Question, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]*model.Question, 0, len(r.m.questions))
	for _, q := range r.m.questions {
		q := q
		out = append(out, &q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memoryQuestions) GetByID(ctx context.Context, id int) (*model.Question, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	q, ok := r.m.questions[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r memoryQuestions) Count(ctx context.Context) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.m.questions)), nil
}

func (r memoryQuestions) InsertMany(ctx context.Context, questions []model.Question) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, q := range questions {
		r.m.questions[q.ID] = q
	}
	return nil
}

func (r memoryQuestions) DeleteAll(ctx context.Context) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.questions = make(map[int]model.Question)
	return nil
}

type memorySessions struct{ m *MemoryStore }

func copySession(s *model.Session) *model.Session {
	cp := *s
	cp.Answers = append([]model.Answer{}, s.Answers...)
	return &cp
}

func (r memorySessions) Create(ctx context.Context, session *model.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if session.Answers == nil {
		session.Answers = []model.Answer{}
	}
	r.m.sessions[session.SessionID] = copySession(session)
	return nil
}

func (r memorySessions) GetBySessionID(ctx context.Context, sessionID string) (*model.Session, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return copySession(s), nil
}

func (r memorySessions) mutate(sessionID string, fn func(s *model.Session)) (*model.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	fn(s)
	return copySession(s), nil
}

func (r memorySessions) UpdateMetadata(ctx context.Context, sessionID string, update model.SessionUpdate) (*model.Session, error) {
	return r.mutate(sessionID, func(s *model.Session) {
		if update.SurveyType != "" {
			s.SurveyType = update.SurveyType
		}
		if update.VignetteType != "" {
			s.VignetteType = update.VignetteType
		}
	})
}

func (r memorySessions) UpsertAnswer(ctx context.Context, sessionID string, answer model.Answer) (*model.Session, error) {
	return r.mutate(sessionID, func(s *model.Session) {
		s.Answers = model.UpsertAnswer(s.Answers, answer)
	})
}

func (r memorySessions) Complete(ctx context.Context, sessionID string, endTime time.Time) (*model.Session, error) {
	return r.mutate(sessionID, func(s *model.Session) {
		s.Completed = true
		s.EndTime = &endTime
	})
}

func (r memorySessions) SetBackgroundProfile(ctx context.Context, sessionID, profileID string) error {
	_, err := r.mutate(sessionID, func(s *model.Session) { s.BackgroundProfile = profileID })
	return err
}

func (r memorySessions) LinkRecording(ctx context.Context, sessionID string, questionID int, recordingID string) (bool, error) {
	linked := false
	_, err := r.mutate(sessionID, func(s *model.Session) {
		for i := range s.Answers {
			if s.Answers[i].QuestionID == questionID {
				s.Answers[i].EEGRecordingID = recordingID
				linked = true
				return
			}
		}
	})
	return linked, err
}

func (r memorySessions) SetVignetteRecording(ctx context.Context, sessionID, recordingID string) error {
	_, err := r.mutate(sessionID, func(s *model.Session) { s.VignetteRecordingID = recordingID })
	return err
}

func (r memorySessions) CountByProfile(ctx context.Context, profileID string) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var n int64
	for _, s := range r.m.sessions {
		if s.BackgroundProfile == profileID {
			n++
		}
	}
	return n, nil
}

type memoryProfiles struct{ m *MemoryStore }

func copyProfile(p *model.BackgroundProfile) *model.BackgroundProfile {
	cp := *p
	cp.Ethnicity = append([]string(nil), p.Ethnicity...)
	cp.EEGRecordings = append([]model.RecordingRef(nil), p.EEGRecordings...)
	cp.TimeSpentOnQuestions = make(map[string]int64, len(p.TimeSpentOnQuestions))
	for k, v := range p.TimeSpentOnQuestions {
		cp.TimeSpentOnQuestions[k] = v
	}
	return &cp
}

func (r memoryProfiles) GetByID(ctx context.Context, id string) (*model.BackgroundProfile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	p, ok := r.m.profiles[id]
	if !ok {
		return nil, nil
	}
	return copyProfile(p), nil
}

func (r memoryProfiles) FindByHash(ctx context.Context, hash string) (*model.BackgroundProfile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	id, ok := r.m.byHash[hash]
	if !ok {
		return nil, nil
	}
	return copyProfile(r.m.profiles[id]), nil
}

func (r memoryProfiles) Create(ctx context.Context, profile *model.BackgroundProfile) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, taken := r.m.byHash[profile.ProfileHash]; taken {
		return ErrDuplicateProfile
	}
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	r.m.profiles[profile.ID] = copyProfile(profile)
	r.m.byHash[profile.ProfileHash] = profile.ID
	return nil
}

func (r memoryProfiles) RecordTiming(ctx context.Context, id string, questionID int, timeSpent int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.profiles[id]
	if !ok {
		return ErrNotFound
	}
	if p.TimeSpentOnQuestions == nil {
		p.TimeSpentOnQuestions = make(map[string]int64)
	}
	p.TimeSpentOnQuestions[strconv.Itoa(questionID)] = timeSpent
	return nil
}

func (r memoryProfiles) AddRecording(ctx context.Context, id string, ref model.RecordingRef) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.profiles[id]
	if !ok {
		return ErrNotFound
	}
	p.EEGRecordings = append(p.EEGRecordings, ref)
	return nil
}

func (r memoryProfiles) RemoveRecordings(ctx context.Context, id, sessionID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.profiles[id]
	if !ok {
		return ErrNotFound
	}
	kept := p.EEGRecordings[:0]
	for _, ref := range p.EEGRecordings {
		if ref.SessionID != sessionID {
			kept = append(kept, ref)
		}
	}
	p.EEGRecordings = kept
	return nil
}

func (r memoryProfiles) List(ctx context.Context) ([]*model.BackgroundProfile, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]*model.BackgroundProfile, 0, len(r.m.profiles))
	for _, p := range r.m.profiles {
		out = append(out, copyProfile(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memoryProfiles) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if p, ok := r.m.profiles[id]; ok {
		delete(r.m.byHash, p.ProfileHash)
		delete(r.m.profiles, id)
	}
	return nil
}

type memoryRecordings struct{ m *MemoryStore }

func (r memoryRecordings) Create(ctx context.Context, recording *model.EEGRecording) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if recording.ID == "" {
		recording.ID = uuid.New().String()
	}
	cp := *recording
	r.m.recordings = append(r.m.recordings, &cp)
	return nil
}

func (r memoryRecordings) ListBySession(ctx context.Context, sessionID string) ([]*model.EEGRecording, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := []*model.EEGRecording{}
	for _, rec := range r.m.recordings {
		if rec.SessionID == sessionID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}
