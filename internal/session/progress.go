package session

// Tier is the color band of the progress bar.
type Tier string

const (
	TierNeutral Tier = "neutral" // nothing attempted yet
	TierGreen   Tier = "green"
	TierYellow  Tier = "yellow"
	TierRed     Tier = "red"
)

// Tier thresholds on running accuracy, in percent.
const (
	GreenThreshold  = 80.0
	YellowThreshold = 60.0
)

// TierFor maps a running accuracy percentage to its tier.
func TierFor(accuracy float64, attempted int) Tier {
	switch {
	case attempted == 0:
		return TierNeutral
	case accuracy >= GreenThreshold:
		return TierGreen
	case accuracy >= YellowThreshold:
		return TierYellow
	default:
		return TierRed
	}
}

// Live is the running state shown while a session is active.
type Live struct {
	Attempted       int
	Accuracy        float64 // percent of attempted
	ProgressPercent float64
	Tier            Tier
}

// LiveStats derives running accuracy and progress from a session.
func LiveStats(s *Session) Live {
	var l Live
	for _, it := range s.Items {
		if it.Attempted() {
			l.Attempted++
		}
	}
	if l.Attempted > 0 {
		l.Accuracy = float64(s.ScoreCorrect) / float64(l.Attempted) * 100
	}
	if n := len(s.Items); n > 0 {
		l.ProgressPercent = float64(s.CurrentIndex) / float64(n) * 100
	}
	l.Tier = TierFor(l.Accuracy, l.Attempted)
	return l
}
