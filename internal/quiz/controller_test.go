package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mcqprep/internal/bank"
	"github.com/abhisek/mcqprep/internal/explain"
	"github.com/abhisek/mcqprep/internal/llm"
	"github.com/abhisek/mcqprep/internal/progress"
	"github.com/abhisek/mcqprep/internal/question"
	"github.com/abhisek/mcqprep/internal/sampler"
	"github.com/abhisek/mcqprep/internal/session"
	"github.com/abhisek/mcqprep/internal/store"
)

func testPool(id string, n int) *question.Pool {
	p := &question.Pool{ID: id, Name: bank.PoolName(id)}
	for i := 0; i < n; i++ {
		p.Questions = append(p.Questions, question.Question{
			ID:   fmt.Sprintf("%d", i+1),
			Text: fmt.Sprintf("%s question %d?", id, i+1),
			Options: []question.Option{
				{ID: "a", Text: "alpha"}, {ID: "b", Text: "beta"},
				{ID: "c", Text: "gamma"}, {ID: "d", Text: "delta"},
			},
			CorrectIndex: i % 4,
			Module:       i%2 + 1,
		})
	}
	return p
}

type fixture struct {
	c     *Controller
	kv    *store.Memory
	prog  *progress.Store
	clock time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{kv: store.NewMemory(), clock: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	f.prog = progress.New(f.kv, nil)
	base := []Option{
		WithProgress(f.prog),
		WithSampler(sampler.NewSeeded(7)),
		WithClock(func() time.Time { return f.clock }),
	}
	f.c = New(context.Background(), NewRegistry(), append(base, opts...)...)
	return f
}

func (f *fixture) correct() int {
	return f.c.machine.Session().Current().Question.CorrectIndex
}

func TestStart_RejectsPoolsThatAreNotReady(t *testing.T) {
	f := newFixture(t)

	_, err := f.c.Start(StartRequest{Source: "module1"})
	assert.ErrorIs(t, err, ErrPoolNotReady)

	seq := f.c.BeginLoad("module1")
	_, err = f.c.Start(StartRequest{Source: "module1"})
	assert.ErrorIs(t, err, ErrPoolNotReady)

	f.c.CompleteLoad("module1", seq, nil, errors.New("connection refused"))
	_, err = f.c.Start(StartRequest{Source: "module1"})
	assert.ErrorIs(t, err, bank.ErrSourceUnavailable)
	assert.Equal(t, session.PhaseIdle, f.c.Phase())
}

func TestStart_ModuleSession(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module1", 10))

	vm, err := f.c.Start(StartRequest{Source: "module1", Count: Limit(5)})
	require.NoError(t, err)

	assert.Equal(t, session.PhaseActive, vm.Phase)
	assert.Equal(t, 5, vm.Total)
	assert.Equal(t, 1, vm.Number())
	assert.Equal(t, "00:06:00", vm.Remaining)
	assert.Equal(t, "Module 1", vm.SourceName)
	assert.False(t, vm.Answered)
	assert.True(t, f.c.TimerActive())

	seen := map[string]bool{}
	for _, it := range f.c.machine.Session().Items {
		assert.False(t, seen[it.Question.ID], "duplicate %s", it.Question.ID)
		seen[it.Question.ID] = true
	}
}

// filledOptionPool normalizes three records, one of whose options has no
// text and is filled with a placeholder.
func filledOptionPool(t *testing.T, id string) *question.Pool {
	t.Helper()
	var raws []question.RawQuestion
	doc := `[
		{"id":1,"question":"First?","options":["a","b","c","d"],"answer":0},
		{"id":2,"question":"Second?","options":[{"id":"x"},"b","c","d"],"answer":1},
		{"id":3,"question":"Third?","options":["a","b","c","d"],"answer":2}
	]`
	require.NoError(t, json.Unmarshal([]byte(doc), &raws))
	pool, drops := question.NormalizePool(id, bank.PoolName(id), raws)
	require.Empty(t, drops)
	require.Equal(t, 3, pool.Len())
	require.False(t, pool.Questions[1].StructurallyValid())
	return pool
}

func TestStart_ModuleKeepsFilledOptionQuestions(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(filledOptionPool(t, "module1"))

	vm, err := f.c.Start(StartRequest{Source: "module1", Count: Limit(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, vm.Total)
}

func TestStart_MixedKeepsFilledOptionQuestions(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(filledOptionPool(t, "module1"))

	vm, err := f.c.Start(StartRequest{Source: session.SourceMixed, Count: Limit(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, vm.Total)
}

func TestStart_ModuleDefaultsToAll(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module2", 7))

	vm, err := f.c.Start(StartRequest{Source: "module2"})
	require.NoError(t, err)
	assert.Equal(t, 7, vm.Total)
}

func TestStart_ClearsSavedSessionForSource(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module1", 4))

	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)
	_, err = f.c.Dispatch(SelectOption{Index: 0})
	require.NoError(t, err)
	_, err = f.c.Dispatch(Advance{})
	require.NoError(t, err)
	vm, err := f.c.Dispatch(SaveAndExitRequested{})
	require.NoError(t, err)
	require.True(t, vm.Saved)

	_, err = f.prog.LoadFor(context.Background(), "module1")
	require.NoError(t, err)

	_, err = f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)
	_, err = f.prog.LoadFor(context.Background(), "module1")
	assert.ErrorIs(t, err, progress.ErrNoSavedSession)
}

func TestDispatch_AnswerMarksAndPersists(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module1", 4))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)

	correct := f.correct()
	wrong := (correct + 1) % 4

	f.clock = f.clock.Add(12 * time.Second)
	vm, err := f.c.Dispatch(SelectOption{Index: wrong})
	require.NoError(t, err)
	assert.True(t, vm.Answered)
	assert.Equal(t, MarkCorrect, vm.Options[correct].Mark)
	assert.Equal(t, MarkWrong, vm.Options[wrong].Mark)
	assert.Equal(t, 0, vm.Score)

	// second answer is ignored
	vm, err = f.c.Dispatch(SelectOption{Index: correct})
	require.NoError(t, err)
	assert.Equal(t, 0, vm.Score)
	assert.Equal(t, MarkWrong, vm.Options[wrong].Mark)

	snap, err := f.prog.LoadFor(context.Background(), "module1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Attempted())
	assert.Equal(t, 12.0, snap.Items[0].AnsweredAtDeltaSeconds)
	assert.Equal(t, tierRed(), vm.Live.Tier)

	_, err = f.c.Dispatch(SelectOption{Index: 4})
	assert.ErrorIs(t, err, session.ErrInvalidChoice)
}

func tierRed() session.Tier { return session.TierFor(0, 1) }

func TestDispatch_WriteFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.kv.FailWrites = errors.New("quota exceeded")
	f.c.Pools().Set(testPool("module1", 3))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)

	vm, err := f.c.Dispatch(SelectOption{Index: f.correct()})
	require.NoError(t, err)
	assert.Equal(t, 1, vm.Score)
	var werr *progress.WriteError
	assert.ErrorAs(t, vm.PersistError, &werr)
	assert.Equal(t, session.PhaseActive, vm.Phase)
}

func TestDispatch_FinishBuildsSummaryAndClearsProgress(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module1", 5))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)

	// three correct, two skipped
	for i := 0; i < 5; i++ {
		if i < 3 {
			_, err = f.c.Dispatch(SelectOption{Index: f.correct()})
			require.NoError(t, err)
		}
		_, err = f.c.Dispatch(Advance{})
		require.NoError(t, err)
	}

	vm := f.c.View()
	require.Equal(t, session.PhaseFinished, vm.Phase)
	require.NotNil(t, vm.Summary)
	assert.Equal(t, 3, vm.Summary.Attempted)
	assert.Equal(t, 2, vm.Summary.Skipped)
	assert.Equal(t, 60.0, vm.Summary.OverallScore)
	assert.True(t, vm.Summary.Passed)
	assert.Len(t, vm.Summary.Review, 2)
	assert.False(t, f.c.TimerActive())

	_, err = f.prog.LoadFor(context.Background(), "module1")
	assert.ErrorIs(t, err, progress.ErrNoSavedSession)
	_, err = f.prog.LoadLast(context.Background())
	assert.ErrorIs(t, err, progress.ErrNoSavedSession)
}

func TestDispatch_TickCountdown(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module1", 5))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)
	id := f.c.SessionID()

	vm, err := f.c.Dispatch(Tick{SessionID: "stale"})
	require.NoError(t, err)
	assert.Equal(t, 360, vm.RemainingSeconds)

	for i := 0; i < 359; i++ {
		_, err = f.c.Dispatch(Tick{SessionID: id})
		require.NoError(t, err)
	}
	assert.Equal(t, "00:00:01", f.c.View().Remaining)
	assert.True(t, f.c.TimerActive())

	vm, err = f.c.Dispatch(Tick{SessionID: id})
	require.NoError(t, err)
	assert.Equal(t, session.PhaseFinished, vm.Phase)
	require.NotNil(t, vm.Summary)
	assert.True(t, vm.Summary.TimedOut)

	// late ticks after finish are dropped
	vm, err = f.c.Dispatch(Tick{SessionID: id})
	assert.NoError(t, err)
	assert.Equal(t, session.PhaseFinished, vm.Phase)
}

func TestDispatch_SaveAndExitAtFirstQuestionWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module3", 4))
	_, err := f.c.Start(StartRequest{Source: "module3"})
	require.NoError(t, err)

	vm, err := f.c.Dispatch(SaveAndExitRequested{})
	require.NoError(t, err)
	assert.False(t, vm.Saved)
	assert.Equal(t, session.PhaseAbandoned, vm.Phase)
	assert.False(t, f.c.TimerActive())

	keys, err := f.kv.Keys(context.Background(), progress.KeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestDispatch_ResumeRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module1", 6))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)

	_, _ = f.c.Dispatch(SelectOption{Index: f.correct()})
	_, _ = f.c.Dispatch(Advance{})
	_, _ = f.c.Dispatch(Tick{SessionID: f.c.SessionID()})
	before := f.c.View()
	_, err = f.c.Dispatch(SaveAndExitRequested{})
	require.NoError(t, err)

	vm, err := f.c.Dispatch(ResumeRequested{Source: "module1"})
	require.NoError(t, err)
	assert.Equal(t, session.PhaseActive, vm.Phase)
	assert.Equal(t, before.Index, vm.Index)
	assert.Equal(t, before.Score, vm.Score)
	assert.Equal(t, before.RemainingSeconds, vm.RemainingSeconds)
	assert.Equal(t, before.SessionID, vm.SessionID)
	assert.Equal(t, before.Question, vm.Question)
}

func TestDispatch_ResumeKindMismatch(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module1", 4))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)
	_, _ = f.c.Dispatch(Advance{})
	_, _ = f.c.Dispatch(SaveAndExitRequested{})

	vm, err := f.c.Dispatch(ResumeRequested{Source: session.SourceMixed})
	assert.ErrorIs(t, err, progress.ErrNoSavedSession)
	assert.Equal(t, "no saved session for this module", err.Error())
	assert.Equal(t, session.PhaseIdle, vm.Phase)

	vm, err = f.c.Dispatch(ResumeLast{})
	require.NoError(t, err)
	assert.Equal(t, session.Source("module1"), vm.Source)
}

func TestDispatch_ResumeCorruptSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, progress.KeyFor("module2"), `{"sourceKind":"module2","items":[]}`))

	vm, err := f.c.Dispatch(ResumeRequested{Source: "module2"})
	assert.ErrorIs(t, err, session.ErrInvalidSnapshot)
	assert.Equal(t, session.PhaseIdle, vm.Phase)
}

func TestDispatch_Restart(t *testing.T) {
	f := newFixture(t)
	f.c.Pools().Set(testPool("module1", 1))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)

	_, err = f.c.Dispatch(RestartRequested{})
	assert.ErrorIs(t, err, session.ErrWrongPhase)

	_, _ = f.c.Dispatch(Advance{})
	require.Equal(t, session.PhaseFinished, f.c.Phase())

	vm, err := f.c.Dispatch(RestartRequested{})
	require.NoError(t, err)
	assert.Equal(t, session.PhaseIdle, vm.Phase)
	assert.Nil(t, vm.Summary)
	assert.Empty(t, vm.Question)
}

func TestStart_Mixed(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"module1", "module2", "module3"} {
		f.c.Pools().Set(testPool(id, 10))
	}
	f.c.BeginLoad("module4") // still loading, skipped

	vm, err := f.c.Start(StartRequest{Source: session.SourceMixed, Count: Limit(9)})
	require.NoError(t, err)
	assert.Equal(t, 9, vm.Total)

	perModule := map[string]int{}
	for _, it := range f.c.machine.Session().Items {
		perModule[it.Question.SourceModule]++
	}
	assert.Equal(t, map[string]int{"module1": 3, "module2": 3, "module3": 3}, perModule)
}

func TestStart_MixedDefaultsAndAvailability(t *testing.T) {
	f := newFixture(t)

	_, err := f.c.Start(StartRequest{Source: session.SourceMixed})
	assert.ErrorIs(t, err, bank.ErrSourceUnavailable)

	f.c.BeginLoad("module1")
	_, err = f.c.Start(StartRequest{Source: session.SourceMixed})
	assert.ErrorIs(t, err, ErrPoolNotReady)

	f.c.Pools().Set(testPool("module1", 40))
	vm, err := f.c.Start(StartRequest{Source: session.SourceMixed})
	require.NoError(t, err)
	assert.Equal(t, DefaultMixedCount, vm.Total)
}

func TestStart_Review(t *testing.T) {
	f := newFixture(t, WithConfig(Config{MixedCount: 25, ReviewCount: sampler.Of(3)}))
	review := testPool(bank.ReviewPoolID, 10)
	f.c.Pools().Set(review)

	vm, err := f.c.Start(StartRequest{Source: session.SourceReview})
	require.NoError(t, err)
	assert.Equal(t, 3, vm.Total)
	_, _ = f.c.Dispatch(SaveAndExitRequested{})

	module := 2
	vm, err = f.c.Start(StartRequest{Source: session.SourceReview, Count: Limit(0), Module: &module})
	require.NoError(t, err)
	assert.Equal(t, 5, vm.Total)
	for _, it := range f.c.machine.Session().Items {
		assert.Equal(t, 2, it.Question.Module)
	}
}

func TestStart_ReviewWithNoValidQuestions(t *testing.T) {
	f := newFixture(t)
	pool := testPool(bank.ReviewPoolID, 2)
	for i := range pool.Questions {
		pool.Questions[i].Options[1].Origin = question.OriginFilled
	}
	f.c.Pools().Set(pool)

	_, err := f.c.Start(StartRequest{Source: session.SourceReview})
	assert.ErrorIs(t, err, sampler.ErrNoValidQuestions)
}

func TestExplain_GeneratedExplanationReachesView(t *testing.T) {
	reply, _ := json.Marshal(map[string]string{"explanation": "Because delta."})
	svc := explain.NewService(llm.NewMockProvider(llm.MockResponse{Content: reply}), explain.DefaultConfig(), nil)
	f := newFixture(t, WithExplainer(svc))
	f.c.Pools().Set(testPool("module1", 1))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)

	vm, err := f.c.Dispatch(SelectOption{Index: (f.correct() + 1) % 4})
	require.NoError(t, err)
	assert.Empty(t, vm.Explanation)
	assert.True(t, vm.ExplanationAvailable)

	text, err := f.c.Explain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Because delta.", text)

	vm = f.c.View()
	assert.Equal(t, "Because delta.", vm.Explanation)
	assert.False(t, vm.ExplanationAvailable)

	vm, err = f.c.Dispatch(Advance{})
	require.NoError(t, err)
	require.Len(t, vm.Summary.Review, 1)
	assert.Equal(t, "Because delta.", vm.Summary.Review[0].Explanation)
}

func TestExplainJob_FillsSummaryAfterApply(t *testing.T) {
	reply, _ := json.Marshal(map[string]string{"explanation": "Gamma is right."})
	svc := explain.NewService(llm.NewMockProvider(llm.MockResponse{Content: reply}), explain.DefaultConfig(), nil)
	f := newFixture(t, WithExplainer(svc))
	f.c.Pools().Set(testPool("module1", 2))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)

	_, err = f.c.Dispatch(Advance{})
	require.NoError(t, err)
	vm, err := f.c.Dispatch(Advance{})
	require.NoError(t, err)
	require.Equal(t, session.PhaseFinished, vm.Phase)
	require.Len(t, vm.Summary.Review, 2)

	job, err := f.c.ExplainJobFor(2)
	require.NoError(t, err)
	assert.Equal(t, 2, job.Number)
	text, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Gamma is right.", text)

	assert.Empty(t, f.c.View().Summary.Review[1].Explanation)
	f.c.ApplyExplanations()
	assert.Equal(t, "Gamma is right.", f.c.View().Summary.Review[1].Explanation)

	_, err = f.c.ExplainJobFor(3)
	assert.ErrorIs(t, err, ErrNothingToExplain)
}

func TestExplainJob_DisabledExplainer(t *testing.T) {
	f := newFixture(t, WithExplainer(explain.NewService(nil, explain.DefaultConfig(), nil)))
	f.c.Pools().Set(testPool("module1", 1))
	_, err := f.c.Start(StartRequest{Source: "module1"})
	require.NoError(t, err)

	_, err = f.c.ExplainCurrent()
	assert.ErrorIs(t, err, ErrNothingToExplain)
}
