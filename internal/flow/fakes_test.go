package flow

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"rscasurvey/internal/model"
)

// callLog records backend calls and sleeps in order
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func (l *callLog) count(call string) int {
	n := 0
	for _, c := range l.all() {
		if c == call {
			n++
		}
	}
	return n
}

type fakeTicker struct {
	c       chan time.Time
	period  time.Duration
	next    time.Time
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               { t.stopped = true }

type fakeTimer struct {
	c     chan time.Time
	at    time.Time
	fired bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.c }
func (t *fakeTimer) Stop() bool {
	was := !t.fired
	t.fired = true
	return was
}

// fakeClock only moves when told to. Sleep advances it without firing tickers.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
	timers  []*fakeTimer
	log     *callLog
}

func newFakeClock(log *callLog) *fakeClock {
	return &fakeClock{now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), log: log}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time, 1), period: d, next: f.now.Add(d)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeClock) NewTimer(d time.Duration) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTimer{c: make(chan time.Time, 1), at: f.now.Add(d)}
	f.timers = append(f.timers, t)
	return t
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
	f.log.add("sleep:%s", d)
	return ctx.Err()
}

// Advance moves time forward, delivering at most one pending tick per ticker like time.Ticker
func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
	for _, t := range f.tickers {
		if t.stopped {
			continue
		}
		for !t.next.After(f.now) {
			select {
			case t.c <- t.next:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
	for _, t := range f.timers {
		if !t.fired && !t.at.After(f.now) {
			t.fired = true
			t.c <- f.now
		}
	}
}

func (f *fakeClock) activeTickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tickers {
		if !t.stopped {
			n++
		}
	}
	return n
}

type fakeBackend struct {
	log       *callLog
	questions []model.Question
	failSave  error
	failStart error
	saved     []model.SubmitAnswerRequest
	updates   []model.SessionUpdate
	sessions  int
}

func (b *fakeBackend) ListQuestions(ctx context.Context) ([]model.Question, error) {
	b.log.add("list")
	return append([]model.Question(nil), b.questions...), nil
}

func (b *fakeBackend) CreateSession(ctx context.Context) (string, error) {
	b.sessions++
	b.log.add("create")
	return fmt.Sprintf("s%d", b.sessions), nil
}

func (b *fakeBackend) UpdateSession(ctx context.Context, sessionID string, update model.SessionUpdate) (*model.Session, error) {
	b.updates = append(b.updates, update)
	b.log.add("update")
	return &model.Session{SessionID: sessionID}, nil
}

func (b *fakeBackend) SaveAnswer(ctx context.Context, sessionID string, req model.SubmitAnswerRequest) (*model.Session, error) {
	b.log.add("save:%d", req.QuestionID)
	if b.failSave != nil {
		return nil, b.failSave
	}
	b.saved = append(b.saved, req)
	return &model.Session{SessionID: sessionID}, nil
}

func (b *fakeBackend) CompleteSession(ctx context.Context, sessionID string) (*model.Session, error) {
	b.log.add("complete")
	return &model.Session{SessionID: sessionID, Completed: true}, nil
}

func (b *fakeBackend) StartEEG(ctx context.Context, sessionID string, questionID int) error {
	b.log.add("start-eeg:%d", questionID)
	return b.failStart
}

func (b *fakeBackend) StopEEG(ctx context.Context, sessionID string, questionID int) (*model.EEGRecording, error) {
	b.log.add("stop-eeg:%d", questionID)
	return &model.EEGRecording{SessionID: sessionID, QuestionID: questionID}, nil
}

type recordingObserver struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (o *recordingObserver) Publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.snaps = append(o.snaps, s)
}

func (o *recordingObserver) last() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.snaps) == 0 {
		return Snapshot{}
	}
	return o.snaps[len(o.snaps)-1]
}

func makeQuestions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{ID: i + 1, Section: model.SectionBelonging, Text: fmt.Sprintf("q%d", i+1), Type: model.QuestionTypeText}
	}
	return qs
}

type harness struct {
	ctx     context.Context
	c       *Controller
	clock   *fakeClock
	backend *fakeBackend
	log     *callLog
	obs     *recordingObserver
}

func newHarness(t *testing.T, cfg Config, questions []model.Question) *harness {
	t.Helper()
	log := &callLog{}
	clock := newFakeClock(log)
	backend := &fakeBackend{log: log, questions: questions}
	obs := &recordingObserver{}
	c := NewController(cfg, backend, clock, obs)
	c.rng = rand.New(rand.NewPCG(1, 2))
	return &harness{ctx: context.Background(), c: c, clock: clock, backend: backend, log: log, obs: obs}
}

// drain processes everything that is ready without blocking, the way Run would
func (h *harness) drain() {
	for {
		select {
		case ev := <-h.c.events:
			h.c.handle(h.ctx, ev)
		case now := <-h.c.tickC():
			h.c.onTick(h.ctx, now)
		case <-h.c.dwellC():
			h.c.onDwell(h.ctx)
		default:
			return
		}
	}
}

// toFirstQuestion walks through start, study and vignette selection and the reading dwell
func (h *harness) toFirstQuestion(study model.StudyType) {
	h.c.Start()
	h.drain()
	h.c.SelectStudy(study)
	h.drain()
	h.c.SelectVignette(model.VignetteGrowth)
	h.drain()
	h.clock.Advance(h.c.cfg.ReadingDwell)
	h.drain()
}
