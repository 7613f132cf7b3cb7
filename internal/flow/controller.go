// Package flow drives a participant through the questionnaire: study and vignette
// selection, the forced reading period, timed questions with dividers, and the
// EEG start/stop calls that bracket every question.
package flow

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"rscasurvey/internal/model"
	"rscasurvey/internal/questionbank"
)

const eventQueueSize = 32

// Controller is the question flow state machine.
// All state is owned by the goroutine running Run; the exported action methods
// only enqueue events, stamped with the epoch at which they were issued.
// An event whose epoch is older than the current one is dropped, so a click
// delivered after the screen it targeted has gone does nothing.
type Controller struct {
	cfg      Config
	backend  Backend
	clock    Clock
	observer Observer
	rng      *rand.Rand

	events chan event
	epoch  atomic.Uint64

	snapMu sync.RWMutex
	snap   Snapshot

	// owned by the run loop
	state        State
	transitioned bool
	errFrom      State
	errMsg       string
	sessionID    string
	study        model.StudyType
	vignette     *questionbank.Vignette
	questions    []model.Question
	index        int
	pending      int
	dividerPos   int
	divider      string
	startedAt    time.Time
	deadline     time.Time
	remaining    time.Duration
	buffer       *model.SubmitAnswerRequest
	recording    *int
	countdown    Ticker
	dwell        Timer
}

// NewController creates a controller in the ready state. clock and observer may be nil.
func NewController(cfg Config, backend Backend, clock Clock, observer Observer) *Controller {
	if clock == nil {
		clock = RealClock{}
	}
	seed := uint64(time.Now().UnixNano())
	c := &Controller{
		cfg:      cfg,
		backend:  backend,
		clock:    clock,
		observer: observer,
		rng:      rand.New(rand.NewPCG(seed, seed>>17|1)),
		events:   make(chan event, eventQueueSize),
		state:    StateReady,
	}
	c.snap = c.buildSnapshot()
	return c
}

// Start creates a session and moves to study selection
func (c *Controller) Start() { c.dispatch(event{kind: evStart}) }

// SelectStudy picks the study variant
func (c *Controller) SelectStudy(s model.StudyType) {
	c.dispatch(event{kind: evSelectStudy, study: s})
}

// SelectVignette picks the reading passage and starts the forced reading period
func (c *Controller) SelectVignette(v model.VignetteType) {
	c.dispatch(event{kind: evSelectVignette, vignette: v})
}

// Answer buffers a value for the active question. It is persisted on advance.
func (c *Controller) Answer(value interface{}) {
	c.dispatch(event{kind: evAnswer, answer: value})
}

// Next finishes the active question
func (c *Controller) Next() { c.dispatch(event{kind: evNext}) }

// Continue leaves a divider
func (c *Controller) Continue() { c.dispatch(event{kind: evContinue}) }

// TryAgain resets everything after an error or a completed session
func (c *Controller) TryAgain() { c.dispatch(event{kind: evTryAgain}) }

// Snapshot returns the latest published state
func (c *Controller) Snapshot() Snapshot {
	c.snapMu.RLock()
	defer c.snapMu.RUnlock()
	return c.snap
}

func (c *Controller) dispatch(ev event) {
	ev.epoch = c.epoch.Load()
	select {
	case c.events <- ev:
	default:
		log.Printf("[Flow] Event queue full, dropping %s", ev.kind)
	}
}

// Run processes events and timers until ctx is done
func (c *Controller) Run(ctx context.Context) error {
	c.publish()
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ctx, ev)
		case now := <-c.tickC():
			c.onTick(ctx, now)
		case <-c.dwellC():
			c.onDwell(ctx)
		}
	}
}

// tickC is nil outside the answering state so a stopped countdown can never be selected
func (c *Controller) tickC() <-chan time.Time {
	if c.countdown == nil {
		return nil
	}
	return c.countdown.C()
}

func (c *Controller) dwellC() <-chan time.Time {
	if c.dwell == nil {
		return nil
	}
	return c.dwell.C()
}

func (c *Controller) handle(ctx context.Context, ev event) {
	if ev.epoch != c.epoch.Load() {
		log.Printf("[Flow] Dropping stale %s event", ev.kind)
		return
	}
	defer c.finish()

	switch {
	case ev.kind == evStart && c.state == StateReady:
		c.start(ctx)
	case ev.kind == evSelectStudy && c.state == StateStudySelection:
		c.selectStudy(ctx, ev.study)
	case ev.kind == evSelectVignette && c.state == StateVignetteSelection:
		c.selectVignette(ctx, ev.vignette)
	case ev.kind == evAnswer && c.state == StateAnswering:
		c.bufferAnswer(ev.answer)
	case ev.kind == evNext && c.state == StateAnswering:
		c.advance(ctx)
	case ev.kind == evContinue && c.state == StateDivider:
		c.enterQuestion(ctx, c.pending)
	case ev.kind == evTryAgain && (c.state == StateError || c.state == StateCompleted):
		c.reset(ctx)
	default:
		log.Printf("[Flow] Ignoring %s in state %s", ev.kind, c.state)
	}
}

// finish bumps the epoch after a transition and publishes the new snapshot
func (c *Controller) finish() {
	if c.transitioned {
		c.epoch.Add(1)
		c.transitioned = false
	}
	c.publish()
}

func (c *Controller) setState(s State) {
	c.state = s
	c.transitioned = true
}

func (c *Controller) fail(err error, action string) {
	c.stopTimers()
	c.errFrom = c.state
	c.errMsg = fmt.Sprintf("%s: %v", action, err)
	log.Printf("[Flow] %s halted in %s: %v", action, c.state, err)
	c.setState(StateError)
}

func (c *Controller) start(ctx context.Context) {
	qs, err := c.backend.ListQuestions(ctx)
	if err != nil {
		c.fail(err, "failed to load questions")
		return
	}
	if len(qs) == 0 {
		c.fail(fmt.Errorf("question bank is empty"), "failed to load questions")
		return
	}
	c.questions = BuildSequence(qs, c.cfg.ShufflePrefix, c.rng)

	id, err := c.backend.CreateSession(ctx)
	if err != nil {
		c.fail(err, "failed to create session")
		return
	}
	c.sessionID = id
	log.Printf("[Flow] Session %s started with %d questions", id, len(c.questions))
	c.setState(StateStudySelection)
}

func (c *Controller) selectStudy(ctx context.Context, s model.StudyType) {
	if !s.Valid() {
		log.Printf("[Flow] Ignoring unknown study %q", s)
		return
	}
	c.study = s
	if _, err := c.backend.UpdateSession(ctx, c.sessionID, model.SessionUpdate{SurveyType: s}); err != nil {
		log.Printf("[Flow] Failed to save study selection: %v", err)
	}
	c.setState(StateVignetteSelection)
}

func (c *Controller) selectVignette(ctx context.Context, v model.VignetteType) {
	vignette, err := questionbank.VignetteFor(v)
	if err != nil {
		log.Printf("[Flow] Ignoring vignette: %v", err)
		return
	}
	c.vignette = vignette
	if _, err := c.backend.UpdateSession(ctx, c.sessionID, model.SessionUpdate{VignetteType: v}); err != nil {
		log.Printf("[Flow] Failed to save vignette selection: %v", err)
	}
	if err := c.startRecording(ctx, c.cfg.SentinelQuestionID); err != nil {
		c.fail(err, "failed to start EEG recording")
		return
	}
	c.dwell = c.clock.NewTimer(c.cfg.ReadingDwell)
	c.setState(StateVignetteReading)
}

func (c *Controller) onDwell(ctx context.Context) {
	defer c.finish()
	c.dwell = nil
	if c.state != StateVignetteReading {
		return
	}
	if err := c.stopRecording(ctx); err != nil {
		c.fail(err, "failed to stop EEG recording")
		return
	}
	if err := c.clock.Sleep(ctx, c.cfg.SettleDelay); err != nil {
		return
	}
	c.enterQuestion(ctx, 0)
}

func (c *Controller) enterQuestion(ctx context.Context, i int) {
	if i >= len(c.questions) {
		c.complete(ctx)
		return
	}
	c.index = i
	c.buffer = nil
	c.divider = ""
	c.startedAt = c.clock.Now()
	if err := c.startRecording(ctx, c.questions[i].ID); err != nil {
		c.fail(err, "failed to start EEG recording")
		return
	}
	limit := c.cfg.TimeLimit(i)
	c.deadline = c.startedAt.Add(limit)
	c.remaining = limit
	c.countdown = c.clock.NewTicker(c.cfg.TickInterval)
	c.setState(StateAnswering)
}

func (c *Controller) bufferAnswer(value interface{}) {
	c.buffer = &model.SubmitAnswerRequest{
		QuestionID: c.questions[c.index].ID,
		Answer:     value,
		TimeSpent:  c.clock.Now().Sub(c.startedAt).Milliseconds(),
	}
}

func (c *Controller) onTick(ctx context.Context, now time.Time) {
	defer c.finish()
	if c.state != StateAnswering {
		return
	}
	c.remaining = c.deadline.Sub(now)
	if c.remaining <= 0 {
		c.remaining = 0
		log.Printf("[Flow] Time limit reached on question %d", c.questions[c.index].ID)
		c.advance(ctx)
	}
}

// advance is the single path out of a question, for both timeout and next
func (c *Controller) advance(ctx context.Context) {
	c.stopCountdown()

	if c.buffer != nil {
		if _, err := c.backend.SaveAnswer(ctx, c.sessionID, *c.buffer); err != nil {
			c.fail(err, "failed to save answer")
			return
		}
		c.buffer = nil
	}
	if err := c.stopRecording(ctx); err != nil {
		c.fail(err, "failed to stop EEG recording")
		return
	}
	if err := c.clock.Sleep(ctx, c.cfg.SettleDelay); err != nil {
		return
	}

	var r route
	r, c.dividerPos = c.cfg.decide(c.study, c.index, len(c.questions), c.dividerPos)
	switch {
	case r.done:
		c.complete(ctx)
	case r.showDivider:
		c.pending = r.next
		c.divider = r.divider
		c.setState(StateDivider)
	default:
		c.enterQuestion(ctx, r.next)
	}
}

func (c *Controller) complete(ctx context.Context) {
	if _, err := c.backend.CompleteSession(ctx, c.sessionID); err != nil {
		c.fail(err, "failed to complete session")
		return
	}
	log.Printf("[Flow] Session %s completed", c.sessionID)
	c.setState(StateCompleted)
}

func (c *Controller) startRecording(ctx context.Context, questionID int) error {
	if err := c.backend.StartEEG(ctx, c.sessionID, questionID); err != nil {
		return err
	}
	c.recording = &questionID
	return nil
}

// stopRecording keeps the handle on failure so a reset can retry the stop
func (c *Controller) stopRecording(ctx context.Context) error {
	if c.recording == nil {
		return nil
	}
	if _, err := c.backend.StopEEG(ctx, c.sessionID, *c.recording); err != nil {
		return err
	}
	c.recording = nil
	return nil
}

func (c *Controller) stopCountdown() {
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
}

func (c *Controller) stopTimers() {
	c.stopCountdown()
	if c.dwell != nil {
		c.dwell.Stop()
		c.dwell = nil
	}
}

// reset returns to ready as if the station had restarted
func (c *Controller) reset(ctx context.Context) {
	c.stopTimers()
	if c.recording != nil {
		if err := c.stopRecording(ctx); err != nil {
			log.Printf("[Flow] Failed to stop recording on reset: %v", err)
		} else if err := c.clock.Sleep(ctx, c.cfg.SettleDelay); err != nil {
			return
		}
	}
	c.errFrom = ""
	c.errMsg = ""
	c.sessionID = ""
	c.study = ""
	c.vignette = nil
	c.questions = nil
	c.index = 0
	c.pending = 0
	c.dividerPos = 0
	c.divider = ""
	c.buffer = nil
	c.recording = nil
	c.remaining = 0
	c.setState(StateReady)
}

func (c *Controller) shutdown() {
	c.stopTimers()
	if c.recording == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.stopRecording(ctx); err != nil {
		log.Printf("[Flow] Failed to stop recording on shutdown: %v", err)
	}
}

func (c *Controller) buildSnapshot() Snapshot {
	s := Snapshot{
		State:       c.state,
		ErrorFrom:   c.errFrom,
		Error:       c.errMsg,
		SessionID:   c.sessionID,
		Study:       c.study,
		Index:       c.index,
		Total:       len(c.questions),
		RemainingMs: c.remaining.Milliseconds(),
		Recording:   c.recording != nil,
	}
	switch c.state {
	case StateVignetteReading:
		s.Vignette = c.vignette
	case StateDivider:
		s.Divider = c.divider
	}
	if (c.state == StateAnswering || c.errFrom == StateAnswering) && c.index < len(c.questions) {
		q := c.questions[c.index]
		s.Question = &q
		if c.buffer != nil {
			s.Answer = c.buffer.Answer
		}
	}
	return s
}

func (c *Controller) publish() {
	s := c.buildSnapshot()
	c.snapMu.Lock()
	c.snap = s
	c.snapMu.Unlock()
	if c.observer != nil {
		c.observer.Publish(s)
	}
}
