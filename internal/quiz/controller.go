// Package quiz is the session controller: it turns input events into
// session transitions and returns a fresh view model after each one.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mcqprep/internal/bank"
	"github.com/abhisek/mcqprep/internal/progress"
	"github.com/abhisek/mcqprep/internal/question"
	"github.com/abhisek/mcqprep/internal/sampler"
	"github.com/abhisek/mcqprep/internal/session"
)

// DefaultMixedCount is the mixed session size when none is requested.
const DefaultMixedCount = 25

// Explainer supplies explanations for questions that lack one.
type Explainer interface {
	Enabled() bool
	Cached(q question.Question) (string, bool)
	Explain(ctx context.Context, q question.Question, chosen *int) (string, error)
}

// Config holds the default session sizes.
type Config struct {
	MixedCount   int
	ReviewCount  sampler.Count
	ReviewModule int // 0 means every module
}

// DefaultConfig returns the sizes used when a request leaves them unset.
func DefaultConfig() Config {
	return Config{
		MixedCount:  DefaultMixedCount,
		ReviewCount: sampler.Of(25),
	}
}

// StartRequest selects what to quiz on.
type StartRequest struct {
	Source session.Source

	// Count is the session size. Nil uses the configured default, which
	// for a module is every question.
	Count *sampler.Count

	// Module filters the review bank (0 = every module). Nil uses
	// Config.ReviewModule.
	Module *int
}

// Option configures a Controller.
type Option func(*Controller)

// WithProgress enables snapshot persistence.
func WithProgress(p *progress.Store) Option {
	return func(c *Controller) { c.progress = p }
}

// WithSampler sets the random source for session draws.
func WithSampler(s *sampler.Sampler) Option {
	return func(c *Controller) { c.sampler = s }
}

// WithExplainer enables generated explanations.
func WithExplainer(e Explainer) Option {
	return func(c *Controller) { c.explainer = e }
}

// WithConfig sets the default session sizes.
func WithConfig(cfg Config) Option {
	return func(c *Controller) { c.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides the clock handed to the session machine.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller owns the pool registry and the live session. Dispatch and
// Start must be called from one goroutine; the registry may be updated
// from any.
type Controller struct {
	ctx       context.Context
	pools     *Registry
	machine   *session.Machine
	sampler   *sampler.Sampler
	progress  *progress.Store
	explainer Explainer
	cfg       Config
	log       *zap.Logger
	now       func() time.Time

	summary *session.Summary
	saved   bool
}

// New creates a controller over pools. ctx scopes persistence and
// explanation calls.
func New(ctx context.Context, pools *Registry, opts ...Option) *Controller {
	c := &Controller{
		ctx:   ctx,
		pools: pools,
		cfg:   DefaultConfig(),
		log:   zap.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sampler == nil {
		c.sampler = sampler.New(nil)
	}
	if c.pools == nil {
		c.pools = NewRegistry()
	}
	c.log = c.log.Named("quiz")

	mopts := []session.Option{session.WithLogger(c.log), session.WithClock(c.now)}
	if c.progress != nil {
		mopts = append(mopts, session.WithPersister(c.progress.Persister(ctx)))
	}
	c.machine = session.NewMachine(mopts...)
	return c
}

// Config returns the default session sizes.
func (c *Controller) Config() Config { return c.cfg }

// Pools returns the registry.
func (c *Controller) Pools() *Registry { return c.pools }

// BeginLoad marks a pool load as started. See Registry.BeginLoad.
func (c *Controller) BeginLoad(id string) uint64 { return c.pools.BeginLoad(id) }

// CompleteLoad records a pool load result. See Registry.CompleteLoad.
func (c *Controller) CompleteLoad(id string, seq uint64, pool *question.Pool, err error) bool {
	applied := c.pools.CompleteLoad(id, seq, pool, err)
	if !applied {
		c.log.Debug("stale pool load ignored", zap.String("pool", id), zap.Uint64("seq", seq))
	}
	return applied
}

// View returns the current view model.
func (c *Controller) View() ViewModel { return c.buildView() }

// Phase returns the machine phase.
func (c *Controller) Phase() session.Phase { return c.machine.Phase() }

// TimerActive reports whether the countdown should keep ticking.
func (c *Controller) TimerActive() bool { return c.machine.Phase() == session.PhaseActive }

// ExplanationsEnabled reports whether missing explanations can be generated.
func (c *Controller) ExplanationsEnabled() bool {
	return c.explainer != nil && c.explainer.Enabled()
}

// SessionID returns the id of the loaded session, empty when idle.
func (c *Controller) SessionID() string {
	if s := c.machine.Session(); s != nil {
		return s.ID
	}
	return ""
}

// Start draws questions for req and begins a session. A finished or
// abandoned session is discarded first. Any saved snapshot for the source
// is cleared once the new session has started.
func (c *Controller) Start(req StartRequest) (ViewModel, error) {
	if !req.Source.Valid() {
		return c.buildView(), fmt.Errorf("start %q: unknown source", req.Source)
	}
	if err := c.toIdle(); err != nil {
		return c.buildView(), err
	}

	items, err := c.draw(req)
	if err != nil {
		c.log.Info("session not started", zap.String("source", string(req.Source)), zap.Error(err))
		return c.buildView(), err
	}
	if err := c.machine.Start(req.Source, items); err != nil {
		return c.buildView(), err
	}
	if c.progress != nil {
		if err := c.progress.ClearSource(c.ctx, req.Source); err != nil {
			c.log.Warn("clear saved session failed", zap.String("source", string(req.Source)), zap.Error(err))
		}
	}
	return c.buildView(), nil
}

func (c *Controller) draw(req StartRequest) ([]question.Question, error) {
	switch req.Source.Kind() {
	case session.KindMixed:
		n := c.cfg.MixedCount
		if req.Count != nil {
			n = req.Count.N
			if req.Count.IsAll() {
				n = math.MaxInt
			}
		}
		return c.drawMixed(n)
	case session.KindReview:
		pool, err := c.pools.Get(bank.ReviewPoolID)
		if err != nil {
			return nil, err
		}
		module, count := c.cfg.ReviewModule, c.cfg.ReviewCount
		if req.Module != nil {
			module = *req.Module
		}
		if req.Count != nil {
			count = *req.Count
		}
		return c.sampler.ReviewBank(sampler.FilterModule(pool.Questions, module), count)
	default:
		pool, err := c.pools.Get(string(req.Source))
		if err != nil {
			return nil, err
		}
		count := sampler.All
		if req.Count != nil {
			count = *req.Count
		}
		items := c.sampler.FixedCount(pool.Questions, count)
		if len(items) == 0 {
			return nil, fmt.Errorf("%s: %w", req.Source, sampler.ErrNoValidQuestions)
		}
		return items, nil
	}
}

// drawMixed samples across every module pool that has loaded. Pools still
// loading are skipped unless none is ready.
func (c *Controller) drawMixed(n int) ([]question.Question, error) {
	var (
		tagged  []sampler.Tagged
		pending bool
	)
	for _, id := range bank.ModulePoolIDs {
		pool, err := c.pools.Get(id)
		if err != nil {
			pending = pending || c.pools.Status(id) == PoolLoading
			continue
		}
		tagged = append(tagged, sampler.Tagged{Tag: id, Questions: pool.Questions})
	}
	items := c.sampler.ProportionalMixed(tagged, n)
	if len(items) > 0 {
		return items, nil
	}
	if pending {
		return nil, fmt.Errorf("mixed: %w", ErrPoolNotReady)
	}
	if len(tagged) == 0 {
		return nil, fmt.Errorf("mixed: no module loaded: %w", bank.ErrSourceUnavailable)
	}
	return nil, fmt.Errorf("mixed: %w", sampler.ErrNoValidQuestions)
}

// Dispatch applies ev and returns the resulting view model. Rejected
// events leave the state unchanged and return the error.
func (c *Controller) Dispatch(ev Event) (ViewModel, error) {
	var err error
	switch e := ev.(type) {
	case SelectOption:
		_, err = c.machine.Answer(e.Index)
	case Advance:
		err = c.machine.Advance()
		c.afterTransition()
	case Tick:
		if e.SessionID != c.SessionID() || !c.TimerActive() {
			return c.buildView(), nil
		}
		_, err = c.machine.Tick()
		c.afterTransition()
	case ResumeRequested:
		err = c.resume(func() (*session.Snapshot, error) {
			if c.progress == nil {
				return nil, progress.ErrNoSavedSession
			}
			return c.progress.LoadFor(c.ctx, e.Source)
		})
	case ResumeLast:
		err = c.resume(func() (*session.Snapshot, error) {
			if c.progress == nil {
				return nil, progress.ErrNoSavedSession
			}
			return c.progress.LoadLast(c.ctx)
		})
	case SaveAndExitRequested:
		c.saved, err = c.machine.SaveAndExit()
	case RestartRequested:
		err = c.toIdle()
	default:
		err = fmt.Errorf("unknown event %T", ev)
	}
	return c.buildView(), err
}

// toIdle discards a finished or abandoned session. It refuses while a
// session is live.
func (c *Controller) toIdle() error {
	switch c.machine.Phase() {
	case session.PhaseIdle:
		return nil
	case session.PhaseActive:
		return fmt.Errorf("a session is in progress: %w", session.ErrWrongPhase)
	}
	c.summary = nil
	c.saved = false
	return c.machine.Reset()
}

func (c *Controller) resume(load func() (*session.Snapshot, error)) error {
	if err := c.toIdle(); err != nil {
		return err
	}
	snap, err := load()
	if err != nil {
		if errors.Is(err, session.ErrInvalidSnapshot) {
			c.log.Warn("saved session unreadable", zap.Error(err))
		}
		return err
	}
	return c.machine.Resume(snap)
}

// afterTransition builds the summary and removes the saved snapshot once
// the session has finished.
func (c *Controller) afterTransition() {
	if c.machine.Phase() != session.PhaseFinished || c.summary != nil {
		return
	}
	s := c.machine.Session()
	c.summary = session.BuildSummary(s)
	c.ApplyExplanations()
	if c.progress != nil {
		if err := c.progress.Finish(c.ctx, s.Source, s.ID); err != nil {
			c.log.Warn("clear finished session failed", zap.String("session_id", s.ID), zap.Error(err))
		}
	}
}

// ApplyExplanations copies cached explanations into the summary review
// list. Call it on the event loop after an ExplainJob completes.
func (c *Controller) ApplyExplanations() {
	if c.summary == nil || c.explainer == nil {
		return
	}
	s := c.machine.Session()
	for i := range c.summary.Review {
		entry := &c.summary.Review[i]
		if entry.Explanation != "" {
			continue
		}
		if text, ok := c.explainer.Cached(s.Items[entry.Number-1].Question); ok {
			entry.Explanation = text
		}
	}
}

// ErrNothingToExplain is returned when no answered question is available
// for an explanation request.
var ErrNothingToExplain = errors.New("no question to explain")

// ExplainJob is an explanation request captured from the session so it
// can run off the event loop.
type ExplainJob struct {
	Number int // 1-based
	q      question.Question
	chosen *int
	ex     Explainer
}

// Run generates the explanation. It is safe to call from any goroutine.
func (j ExplainJob) Run(ctx context.Context) (string, error) {
	return j.ex.Explain(ctx, j.q, j.chosen)
}

// ExplainCurrent captures the current question for explanation.
func (c *Controller) ExplainCurrent() (ExplainJob, error) {
	s := c.machine.Session()
	if s == nil {
		return ExplainJob{}, ErrNothingToExplain
	}
	return c.ExplainJobFor(s.CurrentIndex + 1)
}

// ExplainJobFor captures the question at a 1-based position in the loaded
// session.
func (c *Controller) ExplainJobFor(number int) (ExplainJob, error) {
	s := c.machine.Session()
	if s == nil || c.explainer == nil || !c.explainer.Enabled() || number < 1 || number > len(s.Items) {
		return ExplainJob{}, ErrNothingToExplain
	}
	it := s.Items[number-1]
	job := ExplainJob{Number: number, q: it.Question, ex: c.explainer}
	if it.UserAnswer != nil {
		chosen := *it.UserAnswer
		job.chosen = &chosen
	}
	return job, nil
}

// Explain generates an explanation for the current question and waits
// for it. The view picks it up from the explainer cache afterwards.
func (c *Controller) Explain(ctx context.Context) (string, error) {
	job, err := c.ExplainCurrent()
	if err != nil {
		return "", err
	}
	return c.runJob(ctx, job)
}

// ExplainItem is Explain for the question at a 1-based position.
func (c *Controller) ExplainItem(ctx context.Context, number int) (string, error) {
	job, err := c.ExplainJobFor(number)
	if err != nil {
		return "", err
	}
	return c.runJob(ctx, job)
}

func (c *Controller) runJob(ctx context.Context, job ExplainJob) (string, error) {
	text, err := job.Run(ctx)
	if err != nil {
		c.log.Warn("explanation failed", zap.Int("number", job.Number), zap.Error(err))
		return "", err
	}
	c.ApplyExplanations()
	return text, nil
}

// Limit returns a request count of n questions. n < 1 means all.
func Limit(n int) *sampler.Count {
	c := sampler.Of(n)
	return &c
}
