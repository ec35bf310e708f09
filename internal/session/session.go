package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/mcqprep/internal/question"
)

// PersistFunc writes a snapshot. Failures are logged and never abort the
// operation that triggered the write.
type PersistFunc func(*Snapshot) error

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the wall clock used for timing.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithPersister installs the snapshot writer.
func WithPersister(fn PersistFunc) Option {
	return func(m *Machine) { m.persist = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(m *Machine) { m.newID = fn }
}

// Machine drives a single session through Idle, Active and Finished or
// Abandoned. It is not safe for concurrent use; callers serialize events.
type Machine struct {
	phase   Phase
	sess    *Session
	now     func() time.Time
	newID   func() string
	persist PersistFunc
	log     *zap.Logger

	lastPersistErr error
}

// NewMachine creates an idle machine.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		now:   time.Now,
		newID: uuid.NewString,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Session returns the loaded session, nil when idle. Callers must treat it
// as read-only.
func (m *Machine) Session() *Session { return m.sess }

// LastPersistError returns the error from the most recent snapshot write,
// nil if it succeeded or none was attempted.
func (m *Machine) LastPersistError() error { return m.lastPersistErr }

func (m *Machine) require(p Phase, op string) error {
	if m.phase != p {
		return fmt.Errorf("%s in phase %s: %w", op, m.phase, ErrWrongPhase)
	}
	return nil
}

// Start begins a session over items.
func (m *Machine) Start(src Source, items []question.Question) error {
	if err := m.require(PhaseIdle, "start"); err != nil {
		return err
	}
	if len(items) == 0 {
		return ErrEmptySession
	}

	now := m.now()
	s := &Session{
		ID:                   m.newID(),
		Source:               src,
		Items:                make([]Item, len(items)),
		TimeRemainingSeconds: len(items) * SecondsPerItem,
		StartedAt:            now,
		lastEventAt:          now,
	}
	for i, q := range items {
		s.Items[i] = Item{Question: q}
	}
	m.sess = s
	m.phase = PhaseActive
	m.lastPersistErr = nil
	m.log.Info("session started",
		zap.String("session_id", s.ID),
		zap.String("source", string(src)),
		zap.Int("items", len(items)),
	)
	return nil
}

// Answer records choice for the current item. A second answer for the same
// item is ignored and reports recorded=false.
func (m *Machine) Answer(choice int) (recorded bool, err error) {
	if err := m.require(PhaseActive, "answer"); err != nil {
		return false, err
	}
	if choice < 0 || choice >= question.OptionCount {
		return false, fmt.Errorf("option %d: %w", choice, ErrInvalidChoice)
	}

	s := m.sess
	it := s.Current()
	if it.Attempted() {
		return false, nil
	}

	now := m.now()
	v := choice
	it.UserAnswer = &v
	it.AnsweredAtDeltaSeconds = now.Sub(s.lastEventAt).Seconds()
	s.lastEventAt = now
	s.recomputeScore()

	m.write("answer")
	return true, nil
}

// Advance moves to the next item, finishing the session after the last one.
func (m *Machine) Advance() error {
	if err := m.require(PhaseActive, "advance"); err != nil {
		return err
	}
	s := m.sess
	if s.CurrentIndex+1 >= len(s.Items) {
		m.finish(false)
		return nil
	}
	s.CurrentIndex++
	return nil
}

// Tick decrements the countdown by one second and force-finishes the
// session when it reaches zero.
func (m *Machine) Tick() (finished bool, err error) {
	if err := m.require(PhaseActive, "tick"); err != nil {
		return false, err
	}
	s := m.sess
	if s.TimeRemainingSeconds > 0 {
		s.TimeRemainingSeconds--
	}
	if s.TimeRemainingSeconds <= 0 {
		m.finish(true)
		return true, nil
	}
	return false, nil
}

// SaveAndExit abandons the session, writing a snapshot when the user has
// moved past the first question. At the first question nothing new is
// written, but a snapshot already written by Answer is left in place.
func (m *Machine) SaveAndExit() (saved bool, err error) {
	if err := m.require(PhaseActive, "save and exit"); err != nil {
		return false, err
	}
	if m.sess.CurrentIndex > 0 {
		saved = m.write("save and exit")
	}
	m.phase = PhaseAbandoned
	m.log.Info("session abandoned",
		zap.String("session_id", m.sess.ID),
		zap.Int("index", m.sess.CurrentIndex),
		zap.Bool("saved", saved),
	)
	return saved, nil
}

// Resume restores a snapshot. On failure the machine stays idle.
func (m *Machine) Resume(snap *Snapshot) error {
	if err := m.require(PhaseIdle, "resume"); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	now := m.now()
	s := &Session{
		ID:                   snap.SessionID,
		Source:               snap.SourceKind,
		Items:                make([]Item, len(snap.Items)),
		CurrentIndex:         snap.CurrentIndex,
		ScoreCorrect:         snap.ScoreCorrect,
		TimeRemainingSeconds: snap.TimeRemainingSeconds,
		StartedAt:            now,
		lastEventAt:          now,
	}
	for i, it := range snap.Items {
		s.Items[i] = it.clone()
	}
	if s.ID == "" {
		s.ID = m.newID()
	}
	m.sess = s
	m.phase = PhaseActive
	m.lastPersistErr = nil
	m.log.Info("session resumed",
		zap.String("session_id", s.ID),
		zap.String("source", string(s.Source)),
		zap.Int("index", s.CurrentIndex),
	)
	return nil
}

// Reset returns a finished or abandoned machine to idle.
func (m *Machine) Reset() error {
	if m.phase != PhaseFinished && m.phase != PhaseAbandoned {
		return fmt.Errorf("reset in phase %s: %w", m.phase, ErrWrongPhase)
	}
	m.sess = nil
	m.phase = PhaseIdle
	return nil
}

// Snapshot returns the persisted form of the loaded session, nil when idle.
func (m *Machine) Snapshot() *Snapshot {
	if m.sess == nil {
		return nil
	}
	return newSnapshot(m.sess, m.now())
}

func (m *Machine) finish(timedOut bool) {
	m.sess.TimedOut = timedOut
	m.phase = PhaseFinished
	m.log.Info("session finished",
		zap.String("session_id", m.sess.ID),
		zap.Int("score", m.sess.ScoreCorrect),
		zap.Int("items", len(m.sess.Items)),
		zap.Bool("timed_out", timedOut),
	)
}

// write persists a snapshot and reports whether it succeeded.
func (m *Machine) write(op string) bool {
	if m.persist == nil {
		return false
	}
	m.lastPersistErr = m.persist(m.Snapshot())
	if m.lastPersistErr != nil {
		m.log.Warn("snapshot write failed",
			zap.String("op", op),
			zap.String("session_id", m.sess.ID),
			zap.Error(m.lastPersistErr),
		)
		return false
	}
	return true
}
