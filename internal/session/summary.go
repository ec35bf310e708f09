package session

// PassThreshold is the overall score percentage required to pass.
const PassThreshold = 60.0

// ReviewEntry is one incorrect or skipped question on the summary screen.
type ReviewEntry struct {
	Number        int // 1-based position in the session
	Question      string
	UserAnswer    string // empty when skipped
	CorrectAnswer string
	Explanation   string
	Skipped       bool
	SourceModule  string
}

// Summary holds the end-of-session analytics.
type Summary struct {
	Source                 Source
	ItemCount              int
	Attempted              int
	Skipped                int
	ScoreCorrect           int
	AccuracyOfAttempted    float64 // percent
	OverallScore           float64 // percent
	Passed                 bool
	AverageResponseSeconds float64
	TimedOut               bool
	Review                 []ReviewEntry
}

// BuildSummary projects a session into its analytics. It has no side effects.
func BuildSummary(s *Session) *Summary {
	sum := &Summary{
		Source:       s.Source,
		ItemCount:    len(s.Items),
		ScoreCorrect: s.ScoreCorrect,
		TimedOut:     s.TimedOut,
	}

	var totalDelta float64
	for i, it := range s.Items {
		if it.Attempted() {
			sum.Attempted++
			totalDelta += it.AnsweredAtDeltaSeconds
		}
		if it.Correct() {
			continue
		}
		entry := ReviewEntry{
			Number:        i + 1,
			Question:      it.Question.Text,
			CorrectAnswer: it.Question.CorrectOption().Text,
			Explanation:   it.Question.Explanation,
			Skipped:       !it.Attempted(),
			SourceModule:  it.Question.SourceModule,
		}
		if it.Attempted() && *it.UserAnswer < len(it.Question.Options) {
			entry.UserAnswer = it.Question.Options[*it.UserAnswer].Text
		}
		sum.Review = append(sum.Review, entry)
	}
	sum.Skipped = sum.ItemCount - sum.Attempted

	if sum.Attempted > 0 {
		sum.AccuracyOfAttempted = float64(s.ScoreCorrect) / float64(sum.Attempted) * 100
		sum.AverageResponseSeconds = totalDelta / float64(sum.Attempted)
	}
	if sum.ItemCount > 0 {
		sum.OverallScore = float64(s.ScoreCorrect) / float64(sum.ItemCount) * 100
	}
	sum.Passed = sum.OverallScore >= PassThreshold
	return sum
}
