package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mcqprep/internal/explain"
	"github.com/abhisek/mcqprep/internal/llm"
	"github.com/abhisek/mcqprep/internal/question"
	"github.com/abhisek/mcqprep/internal/quiz"
	"github.com/abhisek/mcqprep/internal/router"
	"github.com/abhisek/mcqprep/internal/sampler"
	"github.com/abhisek/mcqprep/internal/screens/nav"
)

// finishedController plays a three-question session: one right, one
// wrong, one skipped.
func finishedController(t *testing.T, opts ...quiz.Option) *quiz.Controller {
	t.Helper()
	pool := &question.Pool{ID: "module2", Name: "Module 2"}
	for i := 0; i < 3; i++ {
		pool.Questions = append(pool.Questions, question.Question{
			ID:   fmt.Sprint(i + 1),
			Text: fmt.Sprintf("Question %d?", i+1),
			Options: []question.Option{
				{ID: "a", Text: "yes"}, {ID: "b", Text: "no"},
				{ID: "c", Text: "maybe"}, {ID: "d", Text: "never"},
			},
		})
	}
	ctrl := quiz.New(context.Background(), quiz.NewRegistry(),
		append([]quiz.Option{quiz.WithSampler(sampler.NewSeeded(2))}, opts...)...)
	ctrl.Pools().Set(pool)
	if _, err := ctrl.Start(quiz.StartRequest{Source: "module2"}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for _, ev := range []quiz.Event{
		quiz.SelectOption{Index: 0}, quiz.Advance{},
		quiz.SelectOption{Index: 1}, quiz.Advance{},
		quiz.Advance{},
	} {
		if _, err := ctrl.Dispatch(ev); err != nil {
			t.Fatalf("Dispatch %T: %v", ev, err)
		}
	}
	return ctrl
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(finishedController(t))
	if s.Title() != "Session Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Session Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(finishedController(t))
	view := s.View(100, 30)
	for _, want := range []string{"FAIL  33%", "Correct: 1/3", "Skipped: 1", "Review (2)", "Your answer: no", "Skipped"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_EnterPops(t *testing.T) {
	s := New(finishedController(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", cmd())
	}
}

func TestSummaryScreen_RestartRequestsSameSource(t *testing.T) {
	s := New(finishedController(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil {
		t.Fatal("expected a command on R")
	}
	msg, ok := cmd().(nav.StartMsg)
	if !ok {
		t.Fatalf("expected nav.StartMsg, got %T", cmd())
	}
	if msg.Request.Source != "module2" || !msg.Replace {
		t.Errorf("unexpected request %+v", msg)
	}
}

func TestSummaryScreen_ExplainMissed(t *testing.T) {
	reply, _ := json.Marshal(map[string]string{"explanation": "Yes is always right here."})
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: reply},
		llm.MockResponse{Content: reply},
	)
	svc := explain.NewService(mock, explain.DefaultConfig(), nil)
	s := New(finishedController(t, quiz.WithExplainer(svc)))

	if s.missingExplanations() != 2 {
		t.Fatalf("missingExplanations = %d, want 2", s.missingExplanations())
	}

	cmd := s.explainMissed()
	if cmd == nil {
		t.Fatal("expected explanation commands")
	}
	if s.pending != 2 {
		t.Errorf("pending = %d, want 2", s.pending)
	}

	for _, number := range []int{1, 2} {
		entry := s.summary.Review[number-1]
		job, err := s.ctrl.ExplainJobFor(entry.Number)
		if err != nil {
			t.Fatalf("ExplainJobFor: %v", err)
		}
		_, err = job.Run(context.Background())
		s.Update(explainDoneMsg{Number: entry.Number, Err: err})
	}

	if s.pending != 0 {
		t.Errorf("pending = %d, want 0", s.pending)
	}
	if s.missingExplanations() != 0 {
		t.Errorf("missingExplanations = %d after explaining", s.missingExplanations())
	}
	if !strings.Contains(s.View(100, 40), "Yes is always right here.") {
		t.Error("expected the explanation in the review list")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(finishedController(t))
	if len(s.KeyHints()) != 3 {
		t.Errorf("KeyHints length = %d, want 3 without an explainer", len(s.KeyHints()))
	}
}
