package session

// timerTickMsg is sent once a second while a session is live. It carries
// the session id so a timer left over from an earlier session is ignored.
type timerTickMsg struct {
	SessionID string
}

// explainDoneMsg is sent when a generated explanation arrives.
type explainDoneMsg struct {
	Number int
	Err    error
}
