package flow

import (
	"context"

	"rscasurvey/internal/model"
	"rscasurvey/internal/questionbank"
)

// State is the screen the participant is on
type State string

const (
	StateReady             State = "ready"
	StateStudySelection    State = "studySelection"
	StateVignetteSelection State = "vignetteSelection"
	StateVignetteReading   State = "vignetteReading"
	StateAnswering         State = "answering"
	StateDivider           State = "divider"
	StateCompleted         State = "completed"
	StateError             State = "error"
)

// Snapshot is everything the presentation layer needs to render the current screen
type Snapshot struct {
	State       State                  `json:"state"`
	ErrorFrom   State                  `json:"errorFrom,omitempty"`
	Error       string                 `json:"error,omitempty"`
	SessionID   string                 `json:"sessionId,omitempty"`
	Study       model.StudyType        `json:"study,omitempty"`
	Vignette    *questionbank.Vignette `json:"vignette,omitempty"`
	Index       int                    `json:"index"`
	Total       int                    `json:"total"`
	Question    *model.Question        `json:"question,omitempty"`
	Answer      interface{}            `json:"answer,omitempty"`
	RemainingMs int64                  `json:"remainingMs"`
	Divider     string                 `json:"divider,omitempty"`
	Recording   bool                   `json:"recording"`
}

// Observer receives a snapshot after every transition and countdown tick
type Observer interface {
	Publish(s Snapshot)
}

// Backend is the part of the study API the controller drives
type Backend interface {
	ListQuestions(ctx context.Context) ([]model.Question, error)
	CreateSession(ctx context.Context) (string, error)
	UpdateSession(ctx context.Context, sessionID string, update model.SessionUpdate) (*model.Session, error)
	SaveAnswer(ctx context.Context, sessionID string, req model.SubmitAnswerRequest) (*model.Session, error)
	CompleteSession(ctx context.Context, sessionID string) (*model.Session, error)
	StartEEG(ctx context.Context, sessionID string, questionID int) error
	StopEEG(ctx context.Context, sessionID string, questionID int) (*model.EEGRecording, error)
}

type eventKind int

const (
	evStart eventKind = iota
	evSelectStudy
	evSelectVignette
	evAnswer
	evNext
	evContinue
	evTryAgain
)

func (k eventKind) String() string {
	switch k {
	case evStart:
		return "start"
	case evSelectStudy:
		return "selectStudy"
	case evSelectVignette:
		return "selectVignette"
	case evAnswer:
		return "answer"
	case evNext:
		return "next"
	case evContinue:
		return "continue"
	case evTryAgain:
		return "tryAgain"
	}
	return "unknown"
}

// event is a user action stamped with the epoch it was issued in
type event struct {
	kind     eventKind
	epoch    uint64
	study    model.StudyType
	vignette model.VignetteType
	answer   interface{}
}
