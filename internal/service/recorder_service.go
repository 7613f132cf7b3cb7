package service

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"rscasurvey/internal/cache"
	"rscasurvey/internal/model"
	"rscasurvey/internal/questionbank"
	"rscasurvey/internal/repository"
)

// RecorderConfig controls where recordings go and how long a stop may take
type RecorderConfig struct {
	OutputDir   string
	StopTimeout time.Duration
}

type activeRecording struct {
	slot model.RecorderSlot
	proc Process
}

// RecorderService owns the single EEG recorder slot.
// At most one process is alive; starting while one is active replaces it.
type RecorderService struct {
	mu     sync.Mutex
	active *activeRecording

	cfg           RecorderConfig
	launcher      ProcessLauncher
	sessionRepo   repository.SessionRepo
	recordingRepo repository.RecordingRepo
	questions     *QuestionService
	profiles      *ProfileService
	recorderCache cache.RecorderCache
	sessionCache  cache.SessionCache
	now           func() time.Time
}

// NewRecorderService creates the recorder. Both caches may be nil.
func NewRecorderService(
	cfg RecorderConfig,
	launcher ProcessLauncher,
	sessionRepo repository.SessionRepo,
	recordingRepo repository.RecordingRepo,
	questions *QuestionService,
	profiles *ProfileService,
	recorderCache cache.RecorderCache,
	sessionCache cache.SessionCache,
) *RecorderService {
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 5 * time.Second
	}
	return &RecorderService{
		cfg:           cfg,
		launcher:      launcher,
		sessionRepo:   sessionRepo,
		recordingRepo: recordingRepo,
		questions:     questions,
		profiles:      profiles,
		recorderCache: recorderCache,
		sessionCache:  sessionCache,
		now:           time.Now,
	}
}

func (s *RecorderService) checkTarget(ctx context.Context, sessionID string, questionID int) error {
	session, err := s.sessionRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session %s: %w", sessionID, repository.ErrNotFound)
	}
	if questionID == questionbank.VignetteQuestionID {
		return nil
	}
	_, err = s.questions.Get(ctx, questionID)
	return err
}

// Start begins recording for (sessionID, questionID), terminating any active recording first
func (s *RecorderService) Start(ctx context.Context, sessionID string, questionID int) (*model.RecorderSlot, error) {
	if err := s.checkTarget(ctx, sessionID, questionID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		old := s.active.slot
		log.Printf("[Recorder] WARN orphaned recording session=%s question=%d file=%s replaced before stop",
			old.SessionID, old.QuestionID, old.FilePath)
		s.terminateLocked()
	}

	path := filepath.Join(s.cfg.OutputDir,
		fmt.Sprintf("%s_q%d_%s.csv", sessionID, questionID, uuid.New().String()[:8]))
	proc, err := s.launcher.Launch(ctx, path)
	if err != nil {
		s.clearMirror(ctx)
		return nil, fmt.Errorf("failed to launch recorder: %w", err)
	}

	s.active = &activeRecording{
		slot: model.RecorderSlot{
			SessionID:  sessionID,
			QuestionID: questionID,
			FilePath:   path,
			StartedAt:  s.now(),
		},
		proc: proc,
	}
	log.Printf("[Recorder] Started pid=%d session=%s question=%d", proc.Pid(), sessionID, questionID)

	slot := s.active.slot
	if s.recorderCache != nil {
		if err := s.recorderCache.SetActive(ctx, &slot); err != nil {
			log.Printf("[Recorder] Failed to mirror slot: %v", err)
		}
	}
	return &slot, nil
}

// Stop ends the recording for (sessionID, questionID), persists it and links it.
// It returns ErrNoActiveRecording when the slot holds anything else.
func (s *RecorderService) Stop(ctx context.Context, sessionID string, questionID int) (*model.EEGRecording, error) {
	s.mu.Lock()
	if s.active == nil || s.active.slot.SessionID != sessionID || s.active.slot.QuestionID != questionID {
		s.mu.Unlock()
		return nil, ErrNoActiveRecording
	}
	slot := s.active.slot
	s.terminateLocked()
	s.mu.Unlock()

	s.clearMirror(ctx)

	recording := &model.EEGRecording{
		SessionID:  slot.SessionID,
		QuestionID: slot.QuestionID,
		FilePath:   slot.FilePath,
		StartedAt:  slot.StartedAt,
		RecordedAt: s.now(),
	}
	if err := s.recordingRepo.Create(ctx, recording); err != nil {
		log.Printf("[Recorder] WARN orphaned recording file=%s not persisted: %v", slot.FilePath, err)
		return nil, fmt.Errorf("failed to save recording: %w", err)
	}

	if err := s.link(ctx, recording); err != nil {
		log.Printf("[Recorder] WARN recording %s saved but not linked: %v", recording.ID, err)
	}
	if s.sessionCache != nil {
		if err := s.sessionCache.Delete(ctx, sessionID); err != nil {
			log.Printf("[Recorder] Session cache invalidate failed: %v", err)
		}
	}
	return recording, nil
}

func (s *RecorderService) link(ctx context.Context, rec *model.EEGRecording) error {
	if rec.QuestionID == questionbank.VignetteQuestionID {
		return s.sessionRepo.SetVignetteRecording(ctx, rec.SessionID, rec.ID)
	}

	question, err := s.questions.Get(ctx, rec.QuestionID)
	if err != nil {
		return err
	}
	if question.IsDemographic() {
		session, err := s.sessionRepo.GetBySessionID(ctx, rec.SessionID)
		if err != nil {
			return err
		}
		if session == nil || session.BackgroundProfile == "" {
			log.Printf("[Recorder] WARN orphaned recording %s: session %s has no background profile yet",
				rec.ID, rec.SessionID)
			return nil
		}
		return s.profiles.AddRecording(ctx, session.BackgroundProfile, model.RecordingRef{
			SessionID:   rec.SessionID,
			QuestionID:  rec.QuestionID,
			RecordingID: rec.ID,
		})
	}

	linked, err := s.sessionRepo.LinkRecording(ctx, rec.SessionID, rec.QuestionID, rec.ID)
	if err != nil {
		return err
	}
	if !linked {
		log.Printf("[Recorder] WARN orphaned recording %s: no answer for question %d in session %s",
			rec.ID, rec.QuestionID, rec.SessionID)
	}
	return nil
}

// Active returns the current slot or nil
func (s *RecorderService) Active() *model.RecorderSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil
	}
	slot := s.active.slot
	return &slot
}

// Recover looks for a slot mirrored by a previous run that never stopped it.
// The recorder process died with that run, so the slot is reported as an
// orphan and the mirror is cleared. It returns the orphaned slot, or nil.
func (s *RecorderService) Recover(ctx context.Context) *model.RecorderSlot {
	if s.recorderCache == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return nil
	}

	slot, err := s.recorderCache.GetActive(ctx)
	if err != nil {
		log.Printf("[Recorder] Failed to read slot mirror: %v", err)
		return nil
	}
	if slot == nil {
		return nil
	}
	log.Printf("[Recorder] WARN orphaned recording session=%s question=%d file=%s left by a previous run",
		slot.SessionID, slot.QuestionID, slot.FilePath)
	s.clearMirror(ctx)
	return slot
}

// Shutdown terminates any active recording without persisting it
func (s *RecorderService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	if s.active != nil {
		log.Printf("[Recorder] WARN orphaned recording file=%s at shutdown", s.active.slot.FilePath)
		s.terminateLocked()
	}
	s.mu.Unlock()
	s.clearMirror(ctx)
}

func (s *RecorderService) terminateLocked() {
	if err := s.active.proc.Stop(s.cfg.StopTimeout); err != nil {
		log.Printf("[Recorder] Failed to stop pid=%d: %v", s.active.proc.Pid(), err)
	}
	s.active = nil
}

func (s *RecorderService) clearMirror(ctx context.Context) {
	if s.recorderCache == nil {
		return
	}
	if err := s.recorderCache.Clear(ctx); err != nil {
		log.Printf("[Recorder] Failed to clear slot mirror: %v", err)
	}
}
