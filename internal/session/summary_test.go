package session

import (
	"math"
	"testing"
	"time"
)

func TestBuildSummary_ThreeOfFiveCorrect(t *testing.T) {
	clock := newClock()
	m := newTestMachine(clock)
	_ = m.Start(ModuleSource(1), testQuestions(5))

	// Answer items 0, 1, 2 correctly; skip 3 and 4.
	for i, d := range []time.Duration{3 * time.Second, 6 * time.Second, 9 * time.Second} {
		clock.advance(d)
		_, _ = m.Answer(i % 4)
		_ = m.Advance()
	}
	_ = m.Advance()
	_ = m.Advance()

	if m.Phase() != PhaseFinished {
		t.Fatalf("Phase = %v, want finished", m.Phase())
	}
	sum := BuildSummary(m.Session())

	if sum.Attempted != 3 || sum.Skipped != 2 || sum.ScoreCorrect != 3 {
		t.Errorf("attempted=%d skipped=%d score=%d, want 3, 2, 3", sum.Attempted, sum.Skipped, sum.ScoreCorrect)
	}
	if sum.OverallScore != 60 {
		t.Errorf("OverallScore = %v, want 60", sum.OverallScore)
	}
	if !sum.Passed {
		t.Error("Passed = false, want true")
	}
	if sum.AccuracyOfAttempted != 100 {
		t.Errorf("AccuracyOfAttempted = %v, want 100", sum.AccuracyOfAttempted)
	}
	if sum.AverageResponseSeconds != 6 {
		t.Errorf("AverageResponseSeconds = %v, want 6", sum.AverageResponseSeconds)
	}
	if len(sum.Review) != 2 || !sum.Review[0].Skipped || sum.Review[0].Number != 4 {
		t.Errorf("Review = %+v, want two skipped entries starting at 4", sum.Review)
	}
}

func TestBuildSummary_WrongAnswerInReview(t *testing.T) {
	m := newTestMachine(newClock())
	qs := testQuestions(2)
	qs[0].Explanation = "Because b."
	_ = m.Start(SourceReview, qs)

	_, _ = m.Answer(3)
	_ = m.Advance()
	_, _ = m.Answer(1)
	_ = m.Advance()

	sum := BuildSummary(m.Session())
	if sum.Passed {
		t.Error("Passed = true with 50%")
	}
	if len(sum.Review) != 1 {
		t.Fatalf("len(Review) = %d, want 1", len(sum.Review))
	}
	r := sum.Review[0]
	if r.UserAnswer != "d" || r.CorrectAnswer != "a" || r.Explanation != "Because b." || r.Skipped {
		t.Errorf("Review[0] = %+v", r)
	}
}

func TestBuildSummary_NothingAttempted(t *testing.T) {
	m := newTestMachine(newClock())
	_ = m.Start(ModuleSource(1), testQuestions(3))

	sum := BuildSummary(m.Session())
	if sum.AccuracyOfAttempted != 0 || sum.AverageResponseSeconds != 0 {
		t.Errorf("accuracy=%v avg=%v, want 0, 0", sum.AccuracyOfAttempted, sum.AverageResponseSeconds)
	}
	if math.IsNaN(sum.OverallScore) || sum.OverallScore != 0 {
		t.Errorf("OverallScore = %v, want 0", sum.OverallScore)
	}
	if sum.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", sum.Skipped)
	}
}
