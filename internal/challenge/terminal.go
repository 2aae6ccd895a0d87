package challenge

import (
	"fmt"

	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
)

// Terminal passcode parameters.
const (
	terminalAlphabet = 6
	terminalLength   = 4
	terminalAttempts = 3
)

// Feedback grades one position of a submitted passcode guess.
type Feedback string

const (
	// FeedbackExact marks a symbol in its correct position.
	FeedbackExact Feedback = "exact"
	// FeedbackPresent marks a symbol that appears anywhere in the secret.
	// Duplicates in the secret or the guess do not consume matches, so
	// "present" can over-report against classic Mastermind scoring.
	FeedbackPresent Feedback = "present"
	// FeedbackAbsent marks a symbol the secret does not contain.
	FeedbackAbsent Feedback = "absent"
)

// terminalChallenge resolves a passcode guesser with positional feedback.
type terminalChallenge struct {
	id       string
	secret   []int
	sequence []int
	feedback []Feedback
	attempts int
	outcome  Outcome
	done     bool
}

func newTerminal(cfg Config, env Env) (*terminalChallenge, error) {
	secret := cfg.Secret
	if len(secret) == 0 {
		if env.Rng == nil {
			return nil, apperrors.New(apperrors.CodeChallengeInvalidInput, "terminal challenge requires a secret or an rng")
		}
		secret = make([]int, terminalLength)
		for i := range secret {
			secret[i] = env.Rng.Intn(terminalAlphabet)
		}
	}
	if len(secret) != terminalLength {
		return nil, apperrors.New(apperrors.CodeChallengeInvalidInput,
			fmt.Sprintf("terminal secret must have %d symbols", terminalLength))
	}
	for _, s := range secret {
		if s < 0 || s >= terminalAlphabet {
			return nil, apperrors.New(apperrors.CodeChallengeInvalidInput,
				fmt.Sprintf("terminal secret symbol %d outside alphabet", s))
		}
	}
	return &terminalChallenge{
		id:       cfg.ID,
		secret:   secret,
		attempts: terminalAttempts,
	}, nil
}

func (t *terminalChallenge) ID() string { return t.id }

func (t *terminalChallenge) Kind() Kind { return KindTerminal }

func (t *terminalChallenge) Resolve(input Input) (Report, error) {
	if input.Clear {
		t.ClearSequence()
		return Report{}, nil
	}
	if input.Symbol == nil {
		return Report{}, apperrors.New(apperrors.CodeChallengeInvalidInput, "terminal input requires a symbol or clear")
	}
	return t.Press(*input.Symbol)
}

// Press appends one symbol to the working sequence. The fourth symbol
// triggers evaluation. Input after the terminal outcome is ignored.
func (t *terminalChallenge) Press(symbol int) (Report, error) {
	if t.done {
		return Report{}, nil
	}
	if symbol < 0 || symbol >= terminalAlphabet {
		return Report{}, apperrors.WithMetadata(
			apperrors.CodeChallengeInvalidInput,
			fmt.Sprintf("terminal symbol %d outside alphabet", symbol),
			map[string]string{"Symbol": fmt.Sprintf("%d", symbol)},
		)
	}

	t.sequence = append(t.sequence, symbol)
	if len(t.sequence) < terminalLength {
		return Report{}, nil
	}
	return t.evaluate(), nil
}

func (t *terminalChallenge) evaluate() Report {
	t.feedback = make([]Feedback, terminalLength)
	exact := 0
	for i, s := range t.sequence {
		switch {
		case s == t.secret[i]:
			t.feedback[i] = FeedbackExact
			exact++
		case contains(t.secret, s):
			t.feedback[i] = FeedbackPresent
		default:
			t.feedback[i] = FeedbackAbsent
		}
	}

	if exact == terminalLength {
		t.done = true
		t.outcome = OutcomeSuccess
		return Report{
			Actions: []ActionEvent{{Label: "SUCCESS", Consequence: Consequence{Heat: 0, Stress: -10}}},
			Outcome: OutcomeSuccess,
		}
	}

	t.attempts--
	report := Report{
		Actions: []ActionEvent{{Label: "ATTEMPT", Consequence: Consequence{Heat: 10, Stress: 15}}},
	}
	if t.attempts <= 0 {
		t.done = true
		t.outcome = OutcomeLockout
		report.Outcome = OutcomeLockout
		return report
	}
	// Feedback stays visible for the next attempt; the sequence resets.
	t.sequence = nil
	return report
}

// ClearSequence discards the partial guess. A no-op once the terminal has
// granted or locked out.
func (t *terminalChallenge) ClearSequence() {
	if t.done {
		return
	}
	t.sequence = nil
	t.feedback = nil
}

// TerminalView is the presentation snapshot of the passcode terminal.
type TerminalView struct {
	Sequence          []int      `json:"sequence"`
	Feedback          []Feedback `json:"feedback,omitempty"`
	AttemptsRemaining int        `json:"attempts_remaining"`
	State             string     `json:"state"`
}

func (t *terminalChallenge) View() View {
	state := "READY"
	switch {
	case t.outcome == OutcomeSuccess:
		state = "GRANTED"
	case t.outcome == OutcomeLockout:
		state = "LOCKOUT"
	case t.feedback != nil:
		state = "DENIED"
	}
	return View{
		ID:   t.id,
		Kind: KindTerminal,
		Terminal: &TerminalView{
			Sequence:          append([]int(nil), t.sequence...),
			Feedback:          append([]Feedback(nil), t.feedback...),
			AttemptsRemaining: t.attempts,
			State:             state,
		},
	}
}

func contains(values []int, v int) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
