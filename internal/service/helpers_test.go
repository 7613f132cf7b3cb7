package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rscasurvey/internal/repository"
)

type fakeProcess struct {
	pid      int
	launcher *fakeLauncher
}

func (p *fakeProcess) Pid() int { return p.pid }

func (p *fakeProcess) Stop(timeout time.Duration) error {
	p.launcher.mu.Lock()
	defer p.launcher.mu.Unlock()
	delete(p.launcher.alive, p.pid)
	return nil
}

type fakeLauncher struct {
	mu    sync.Mutex
	next  int
	alive map[int]bool
	paths []string
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{alive: map[int]bool{}}
}

func (l *fakeLauncher) Launch(ctx context.Context, outputPath string) (Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.alive[l.next] = true
	l.paths = append(l.paths, outputPath)
	return &fakeProcess{pid: l.next, launcher: l}, nil
}

func (l *fakeLauncher) aliveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.alive)
}

type fixture struct {
	store     *repository.MemoryStore
	questions *QuestionService
	profiles  *ProfileService
	sessions  *SessionService
	recorder  *RecorderService
	launcher  *fakeLauncher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	questions := NewQuestionService(store.Questions())
	_, err := questions.SeedIfEmpty(context.Background())
	require.NoError(t, err)

	profiles := NewProfileService(store.Profiles(), nil)
	sessions := NewSessionService(store.Sessions(), store.Recordings(), questions, profiles, nil)
	launcher := newFakeLauncher()
	recorder := NewRecorderService(
		RecorderConfig{OutputDir: "/tmp/eeg", StopTimeout: time.Second},
		launcher, store.Sessions(), store.Recordings(), questions, profiles, nil, nil,
	)
	return &fixture{
		store:     store,
		questions: questions,
		profiles:  profiles,
		sessions:  sessions,
		recorder:  recorder,
		launcher:  launcher,
	}
}
