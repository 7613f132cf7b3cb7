package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rscasurvey/internal/cache"
	"rscasurvey/internal/model"
	"rscasurvey/internal/questionbank"
	"rscasurvey/internal/repository"
)

// SessionService handles participant sessions and answer submission
type SessionService struct {
	sessionRepo   repository.SessionRepo
	recordingRepo repository.RecordingRepo
	questions     *QuestionService
	profiles      *ProfileService
	sessionCache  cache.SessionCache
	now           func() time.Time
}

// NewSessionService creates a new session service. sessionCache may be nil.
func NewSessionService(
	sessionRepo repository.SessionRepo,
	recordingRepo repository.RecordingRepo,
	questions *QuestionService,
	profiles *ProfileService,
	sessionCache cache.SessionCache,
) *SessionService {
	return &SessionService{
		sessionRepo:   sessionRepo,
		recordingRepo: recordingRepo,
		questions:     questions,
		profiles:      profiles,
		sessionCache:  sessionCache,
		now:           time.Now,
	}
}

// Create starts an empty session
func (s *SessionService) Create(ctx context.Context) (*model.Session, error) {
	session := &model.Session{
		SessionID: uuid.New().String(),
		StartTime: s.now(),
		Answers:   []model.Answer{},
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Printf("[Session] Created %s", session.SessionID)
	return session, nil
}

// Get returns repository.ErrNotFound when the session does not exist
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	version := int64(-1)
	if s.sessionCache != nil {
		cached, err := s.sessionCache.Get(ctx, sessionID)
		if err != nil {
			log.Printf("[Session] Cache read failed for %s: %v", sessionID, err)
		} else if cached != nil {
			return cached, nil
		}
		if v, err := s.sessionCache.Version(ctx, sessionID); err != nil {
			log.Printf("[Session] Cache version read failed for %s: %v", sessionID, err)
		} else {
			version = v
		}
	}

	session, err := s.sessionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, repository.ErrNotFound)
	}

	// only fill the cache if no writer invalidated it while we were loading
	if version >= 0 {
		stored, err := s.sessionCache.SetIfVersion(ctx, session, version)
		if err != nil {
			log.Printf("[Session] Cache write failed for %s: %v", sessionID, err)
		} else if !stored {
			log.Printf("[Session] Skipped caching %s, it changed during the read", sessionID)
		}
	}
	return session, nil
}

// View returns the session with its background profile expanded
func (s *SessionService) View(ctx context.Context, sessionID string) (*model.SessionView, error) {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	view := &model.SessionView{Session: session}
	if session.BackgroundProfile != "" {
		profile, err := s.profiles.Get(ctx, session.BackgroundProfile)
		if err != nil {
			return nil, err
		}
		view.BackgroundProfile = profile
	}
	return view, nil
}

// UpdateMetadata stores the study and vignette variants
func (s *SessionService) UpdateMetadata(ctx context.Context, sessionID string, update model.SessionUpdate) (*model.Session, error) {
	if update.Empty() {
		return nil, fmt.Errorf("%w: surveyType or vignetteType required", ErrInvalidSelection)
	}
	if update.SurveyType != "" && !update.SurveyType.Valid() {
		return nil, fmt.Errorf("%w: surveyType %q", ErrInvalidSelection, update.SurveyType)
	}
	if update.VignetteType != "" && !update.VignetteType.Valid() {
		return nil, fmt.Errorf("%w: vignetteType %q", ErrInvalidSelection, update.VignetteType)
	}

	session, err := s.sessionRepo.UpdateMetadata(ctx, sessionID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	s.invalidate(ctx, sessionID)
	return session, nil
}

// SubmitAnswer upserts the answer for its question.
// Demographic answers go to the session's background profile instead of the answers list.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID string, req model.SubmitAnswerRequest) (*model.Session, error) {
	if req.TimeSpent < 0 {
		return nil, fmt.Errorf("%w: negative timeSpent", ErrInvalidAnswer)
	}
	question, err := s.questions.Get(ctx, req.QuestionID)
	if err != nil {
		return nil, err
	}

	if question.IsDemographic() {
		return s.submitDemographic(ctx, sessionID, question, req)
	}

	session, err := s.sessionRepo.UpsertAnswer(ctx, sessionID, model.Answer{
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
		TimeSpent:  req.TimeSpent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}
	s.invalidate(ctx, sessionID)
	return session, nil
}

func (s *SessionService) submitDemographic(ctx context.Context, sessionID string, question *model.Question, req model.SubmitAnswerRequest) (*model.Session, error) {
	field, ok := questionbank.FieldFor(question.ID)
	if !ok {
		return nil, fmt.Errorf("%w: question %d has no profile field", ErrUnknownQuestion, question.ID)
	}

	session, err := s.sessionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, repository.ErrNotFound)
	}

	var prev *model.BackgroundProfile
	var demographics model.Demographics
	if session.BackgroundProfile != "" {
		prev, err = s.profiles.Get(ctx, session.BackgroundProfile)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			demographics = prev.Demographics
		}
	}
	if err := ApplyField(&demographics, field, req.Answer); err != nil {
		return nil, err
	}

	var move *Move
	if prev != nil {
		holders, err := s.sessionRepo.CountByProfile(ctx, prev.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count sessions for profile: %w", err)
		}
		move = &Move{From: prev, SessionID: sessionID, Shared: holders > 1}
	}
	profile, err := s.profiles.Resolve(ctx, demographics, move)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.RecordTiming(ctx, profile.ID, question.ID, req.TimeSpent); err != nil {
		return nil, err
	}
	if profile.ID != session.BackgroundProfile {
		if err := s.sessionRepo.SetBackgroundProfile(ctx, sessionID, profile.ID); err != nil {
			return nil, fmt.Errorf("failed to link profile: %w", err)
		}
		session.BackgroundProfile = profile.ID
		if prev != nil {
			s.pruneProfile(ctx, prev.ID)
		}
	}
	s.invalidate(ctx, sessionID)
	return session, nil
}

// pruneProfile drops a superseded partial profile once no session points at it
func (s *SessionService) pruneProfile(ctx context.Context, profileID string) {
	n, err := s.sessionRepo.CountByProfile(ctx, profileID)
	if err != nil {
		log.Printf("[Session] Failed to count sessions for profile %s: %v", profileID, err)
		return
	}
	if n > 0 {
		return
	}
	if err := s.profiles.Discard(ctx, profileID); err != nil {
		log.Printf("[Session] %v", err)
	}
}

// Complete marks the session finished
func (s *SessionService) Complete(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.sessionRepo.Complete(ctx, sessionID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	s.invalidate(ctx, sessionID)
	log.Printf("[Session] Completed %s with %d answers", sessionID, len(session.Answers))
	return session, nil
}

// Recordings lists the EEG recordings captured during a session
func (s *SessionService) Recordings(ctx context.Context, sessionID string) ([]*model.EEGRecording, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	recordings, err := s.recordingRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	return recordings, nil
}

func (s *SessionService) invalidate(ctx context.Context, sessionID string) {
	if s.sessionCache == nil {
		return
	}
	if err := s.sessionCache.Delete(ctx, sessionID); err != nil {
		log.Printf("[Session] Cache invalidate failed for %s: %v", sessionID, err)
	}
}
