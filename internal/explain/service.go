// Package explain generates explanations for questions whose bank entry
// ships without one.
package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abhisek/mcqprep/internal/llm"
	"github.com/abhisek/mcqprep/internal/question"
)

// ErrDisabled is returned when no provider is configured.
var ErrDisabled = errors.New("explanations are not configured")

// Service generates and caches explanations. It is safe for concurrent use.
type Service struct {
	provider llm.Provider
	cfg      Config
	logger   *zap.Logger

	mu       sync.Mutex
	cache    map[string]string
	inflight map[string]chan struct{}
}

// NewService creates a Service. A nil provider yields a Service whose
// Explain always returns ErrDisabled.
func NewService(provider llm.Provider, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider: provider,
		cfg:      cfg,
		logger:   logger.Named("explain"),
		cache:    make(map[string]string),
		inflight: make(map[string]chan struct{}),
	}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool { return s != nil && s.provider != nil }

// Cached returns a previously generated explanation.
func (s *Service) Cached(q question.Question) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.cache[cacheKey(q)]
	return text, ok
}

type output struct {
	Explanation string `json:"explanation"`
}

// Explain returns the bank explanation when present, otherwise a generated
// one. Concurrent calls for the same question share one request.
func (s *Service) Explain(ctx context.Context, q question.Question, chosen *int) (string, error) {
	if q.Explanation != "" {
		return q.Explanation, nil
	}
	if !s.Enabled() {
		return "", ErrDisabled
	}
	if chosen != nil && (*chosen < 0 || *chosen >= question.OptionCount) {
		chosen = nil
	}

	key := cacheKey(q)
	for {
		s.mu.Lock()
		if text, ok := s.cache[key]; ok {
			s.mu.Unlock()
			return text, nil
		}
		wait, busy := s.inflight[key]
		if !busy {
			done := make(chan struct{})
			s.inflight[key] = done
			s.mu.Unlock()

			text, err := s.generate(ctx, q, chosen)

			s.mu.Lock()
			if err == nil {
				s.cache[key] = text
			}
			delete(s.inflight, key)
			close(done)
			s.mu.Unlock()
			return text, err
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-wait:
		}
	}
}

func (s *Service) generate(ctx context.Context, q question.Question, chosen *int) (string, error) {
	ctx = llm.WithPurpose(ctx, "explain")
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(q, chosen)}},
		Schema:      Schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Warn("explanation failed", zap.String("question", q.ID), zap.Error(err))
		return "", fmt.Errorf("explain question %s: %w", q.ID, err)
	}

	var out output
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse explanation: %w", err)
	}
	text := strings.TrimSpace(out.Explanation)
	if text == "" {
		return "", &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty explanation")}
	}
	return text, nil
}

// cacheKey identifies a question by content, since ids repeat across
// modules.
func cacheKey(q question.Question) string {
	var b strings.Builder
	b.WriteString(q.Text)
	for _, o := range q.Options {
		b.WriteByte(0)
		b.WriteString(o.Text)
	}
	return b.String()
}
