// Package session tracks transient per-attempt progress: the current
// question and its countdown. Sessions are never persisted; durable
// progress lives on the candidate record.
package session

// State is the session state machine. All transitions are plain method
// calls; the Manager serializes access and drives Tick at 1 Hz.
type State struct {
	CandidateID   string `json:"candidateId"`
	QuestionIndex int    `json:"currentQuestionIndex"`
	TimeRemaining int    `json:"timeRemaining"`
	Active        bool   `json:"isActive"`
	Paused        bool   `json:"isPaused"`

	// Draft is the answer text typed so far for the current question.
	// Auto-submit sends it, possibly empty, when the countdown expires.
	Draft string `json:"-"`
}

// Start activates the session at the given question with a full
// countdown. Starting over an active session just discards timer state;
// submitted answers live on the candidate and are unaffected.
func (s *State) Start(questionIndex, timeLimit int) {
	s.QuestionIndex = questionIndex
	s.TimeRemaining = timeLimit
	s.Active = true
	s.Paused = false
	s.Draft = ""
}

// Tick decrements the countdown by one second. It reports true exactly
// once, on the tick that reaches zero: that is the auto-submit trigger.
// Ticks while paused, inactive, or already at zero do nothing, so the
// countdown never goes negative and never double-fires.
func (s *State) Tick() (expired bool) {
	if !s.Active || s.Paused || s.TimeRemaining <= 0 {
		return false
	}
	s.TimeRemaining--
	return s.TimeRemaining == 0
}

// Advance moves to the next question with a fresh countdown. The caller
// guarantees the current question was just answered.
func (s *State) Advance(nextTimeLimit int) {
	s.QuestionIndex++
	s.TimeRemaining = nextTimeLimit
	s.Draft = ""
}

// Pause suspends the countdown.
func (s *State) Pause() {
	s.Paused = true
}

// Resume releases a paused countdown.
func (s *State) Resume() {
	s.Paused = false
}

// End deactivates the session and clears its progress.
func (s *State) End() {
	s.Active = false
	s.Paused = false
	s.QuestionIndex = 0
	s.TimeRemaining = 0
	s.Draft = ""
}
