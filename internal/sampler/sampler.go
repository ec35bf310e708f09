// Package sampler draws ordered session lists from question pools.
package sampler

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/abhisek/mcqprep/internal/question"
)

// ErrNoValidQuestions is returned when filtering leaves nothing to sample.
var ErrNoValidQuestions = errors.New("no valid questions")

// Count is a requested session size. The zero value means "all".
type Count struct {
	N int
}

// All requests every available question.
var All = Count{}

// Of requests n questions. Values below 1 mean all.
func Of(n int) Count {
	if n < 1 {
		return All
	}
	return Count{N: n}
}

// IsAll reports whether the count requests every question.
func (c Count) IsAll() bool { return c.N < 1 }

// Tagged is a pool plus the tag recorded on every question drawn from it.
type Tagged struct {
	Tag       string
	Questions []question.Question
}

// Sampler draws randomized subsets. All shuffling goes through one rand
// source so tests can seed it.
type Sampler struct {
	rng *rand.Rand
}

// New creates a Sampler. A nil src seeds from the clock.
func New(src rand.Source) *Sampler {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1|1)
	}
	return &Sampler{rng: rand.New(src)}
}

// NewSeeded creates a deterministic Sampler.
func NewSeeded(seed uint64) *Sampler {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle returns a uniformly permuted copy of items (Fisher-Yates).
func Shuffle[T any](s *Sampler, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// FixedCount shuffles the pool and takes the first min(n, len) questions.
func (s *Sampler) FixedCount(pool []question.Question, n Count) []question.Question {
	shuffled := Shuffle(s, pool)
	if n.IsAll() || n.N >= len(shuffled) {
		return shuffled
	}
	return shuffled[:n.N]
}

// ProportionalMixed draws n questions spread evenly over the non-empty pools.
// Each pool first contributes floor(n/k); the shortfall is filled from the
// leftovers of all pools. When fewer than n questions exist in total, every
// question is returned.
func (s *Sampler) ProportionalMixed(pools []Tagged, n int) []question.Question {
	var nonEmpty []Tagged
	total := 0
	for _, p := range pools {
		if len(p.Questions) == 0 {
			continue
		}
		nonEmpty = append(nonEmpty, p)
		total += len(p.Questions)
	}
	if len(nonEmpty) == 0 || n < 1 {
		return nil
	}

	if total <= n {
		var all []question.Question
		for _, p := range nonEmpty {
			all = append(all, tag(p.Questions, p.Tag)...)
		}
		return Shuffle(s, all)
	}

	perPool := n / len(nonEmpty)
	var picked, rest []question.Question
	for _, p := range nonEmpty {
		shuffled := tag(Shuffle(s, p.Questions), p.Tag)
		take := min(perPool, len(shuffled))
		picked = append(picked, shuffled[:take]...)
		rest = append(rest, shuffled[take:]...)
	}

	if need := n - len(picked); need > 0 {
		rest = Shuffle(s, rest)
		picked = append(picked, rest[:min(need, len(rest))]...)
	}
	return Shuffle(s, picked)
}

// ReviewBank samples from a review pool after discarding structurally
// invalid questions. Requesting all keeps the filtered order.
func (s *Sampler) ReviewBank(pool []question.Question, n Count) ([]question.Question, error) {
	valid := FilterValid(pool)
	if len(valid) == 0 {
		return nil, ErrNoValidQuestions
	}
	if n.IsAll() {
		return valid, nil
	}
	return s.FixedCount(valid, n), nil
}

// FilterValid keeps structurally valid questions in their original order.
func FilterValid(pool []question.Question) []question.Question {
	out := make([]question.Question, 0, len(pool))
	for _, q := range pool {
		if q.StructurallyValid() {
			out = append(out, q)
		}
	}
	return out
}

// FilterModule keeps questions tagged with the given exam module. Zero keeps all.
func FilterModule(pool []question.Question, module int) []question.Question {
	if module == 0 {
		return pool
	}
	out := make([]question.Question, 0, len(pool))
	for _, q := range pool {
		if q.Module == module {
			out = append(out, q)
		}
	}
	return out
}

func tag(qs []question.Question, source string) []question.Question {
	out := make([]question.Question, len(qs))
	for i, q := range qs {
		q.SourceModule = source
		out[i] = q
	}
	return out
}
