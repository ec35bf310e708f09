package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SourceKind is the sampling policy a session was built with.
type SourceKind string

const (
	KindModule SourceKind = "module"
	KindMixed  SourceKind = "mixed"
	KindReview SourceKind = "review"
)

// Source identifies a logical session: one per module, one mixed, one review.
// It doubles as the storage slot name for saved progress.
type Source string

const (
	SourceMixed  Source = "mixed"
	SourceReview Source = "review"
)

// ModuleCount is the number of exam modules.
const ModuleCount = 6

// SecondsPerItem is the time budget granted per question.
const SecondsPerItem = 72

// ModuleSource returns the source for exam module n (1-based).
func ModuleSource(n int) Source {
	return Source(fmt.Sprintf("module%d", n))
}

// AllSources lists every valid source in display order.
func AllSources() []Source {
	out := make([]Source, 0, ModuleCount+2)
	for i := 1; i <= ModuleCount; i++ {
		out = append(out, ModuleSource(i))
	}
	return append(out, SourceMixed, SourceReview)
}

// ParseSource validates a source name.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.Valid() {
		return "", fmt.Errorf("unknown session source %q", s)
	}
	return src, nil
}

// Valid reports whether s names a known source.
func (s Source) Valid() bool {
	switch s {
	case SourceMixed, SourceReview:
		return true
	}
	return s.Module() > 0
}

// Module returns the module number for a module source, 0 otherwise.
func (s Source) Module() int {
	rest, ok := strings.CutPrefix(string(s), "module")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > ModuleCount {
		return 0
	}
	return n
}

// Kind returns the sampling policy for the source.
func (s Source) Kind() SourceKind {
	switch s {
	case SourceMixed:
		return KindMixed
	case SourceReview:
		return KindReview
	}
	return KindModule
}

// DisplayName returns a human-readable label.
func (s Source) DisplayName() string {
	switch s {
	case SourceMixed:
		return "Mixed"
	case SourceReview:
		return "Review Questions"
	}
	if n := s.Module(); n > 0 {
		return fmt.Sprintf("Module %d", n)
	}
	return string(s)
}

// TimeBudget returns the countdown seed for n questions.
func TimeBudget(n int) time.Duration {
	return time.Duration(n*SecondsPerItem) * time.Second
}

// DurationLabel describes the expected length of an n-question session.
func DurationLabel(n int) string {
	switch {
	case n <= 25:
		return "30 mins"
	case n <= 50:
		return "1 hour"
	case n <= 100:
		return "2 hours"
	}
	hours := int(math.Ceil(float64(n*SecondsPerItem) / 3600))
	return fmt.Sprintf("%d hours", hours)
}

// FormatRemaining renders seconds as HH:MM:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)
}
