// Package challenge implements the encounter resolution engine.
//
// A challenge is one resolvable obstacle inside a room. Each variant owns
// its resolution logic but reports through one shared contract: zero or
// more action events (resource consequences the session controller applies)
// followed by exactly one terminal outcome. Variants never mutate session
// resources directly.
package challenge

import (
	"fmt"
	"math/rand"

	"github.com/louisbranch/glass-shadow/internal/dice"
	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
)

// Kind identifies a challenge variant.
type Kind string

const (
	KindHuman        Kind = "human"
	KindTerminal     Kind = "terminal"
	KindSearch       Kind = "search"
	KindSurveillance Kind = "surveillance"
	KindPuzzle       Kind = "puzzle"
)

// Valid reports whether the kind is a supported variant.
func (k Kind) Valid() bool {
	switch k {
	case KindHuman, KindTerminal, KindSearch, KindSurveillance, KindPuzzle:
		return true
	default:
		return false
	}
}

// Status describes the lifecycle state of a challenge within a room.
type Status int

const (
	// StatusLocked indicates a prerequisite challenge is not complete yet.
	StatusLocked Status = iota
	// StatusActive indicates the challenge can be attempted.
	StatusActive
	// StatusComplete indicates the challenge reached a terminal outcome.
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusLocked:
		return "locked"
	case StatusActive:
		return "active"
	case StatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Outcome is a terminal resolution tag from the closed outcome vocabulary.
type Outcome string

const (
	// Human outcomes.
	OutcomeCompliance Outcome = "compliance"
	OutcomeBroken     Outcome = "broken"
	OutcomeBlown      Outcome = "blown"
	// Terminal (passcode) outcomes.
	OutcomeSuccess Outcome = "success"
	OutcomeLockout Outcome = "lockout"
	// Search outcome.
	OutcomeObjective Outcome = "objective"
	// Surveillance outcomes.
	OutcomePassed   Outcome = "passed"
	OutcomeDetected Outcome = "detected"
	// Puzzle outcome.
	OutcomeUnlocked Outcome = "unlocked"
)

// Setback reports whether the outcome ended the challenge against the
// operative. Setbacks still complete the challenge; they are expected
// results of play, not errors.
func (o Outcome) Setback() bool {
	switch o {
	case OutcomeLockout, OutcomeDetected, OutcomeBlown:
		return true
	default:
		return false
	}
}

// ItemType classifies a recoverable item.
type ItemType string

const (
	ItemTypeKey       ItemType = "key"
	ItemTypeIntel     ItemType = "intel"
	ItemTypeObjective ItemType = "objective"
)

// Item is a recoverable mission item. Immutable once created.
type Item struct {
	Name string   `json:"name"`
	Type ItemType `json:"type"`
}

// Consequence is the resource fallout reported alongside an action.
type Consequence struct {
	Heat   int `json:"heat"`
	Stress int `json:"stress"`
}

// ActionEvent is a single reported action with its consequence.
type ActionEvent struct {
	Label       string      `json:"label"`
	Consequence Consequence `json:"consequence"`
}

// Report captures everything one resolution step emitted. Outcome is empty
// while the challenge remains active and set exactly once, on the step that
// reaches a terminal state.
type Report struct {
	Actions []ActionEvent
	Outcome Outcome
	Item    *Item
}

// Terminal reports whether this step completed the challenge.
func (r Report) Terminal() bool {
	return r.Outcome != ""
}

// Input is one player command routed to the active challenge. Fields are
// variant-specific; the session controller fills Penalty from the current
// stress effects before dispatch.
type Input struct {
	// Action is the social approach for human encounters.
	Action NPCAction `json:"action,omitempty"`
	// Symbol is a terminal keypad index in [0,5].
	Symbol *int `json:"symbol,omitempty"`
	// Clear resets a partial terminal sequence.
	Clear bool `json:"clear,omitempty"`
	// Spot is the search spot to examine.
	Spot string `json:"spot,omitempty"`
	// Dials is the submitted combination for the lock.
	Dials []int `json:"dials,omitempty"`
	// Move attempts to cross during the current surveillance phase.
	Move bool `json:"move,omitempty"`
	// Penalty is the stress roll penalty for any dice check this input
	// triggers.
	Penalty int `json:"-"`
}

// Challenge is the contract all variants resolve through.
//
// Resolve applies one player input to the variant state machine and reports
// the effects. Inputs arriving after the terminal outcome are tolerated and
// resolve to an empty report.
type Challenge interface {
	ID() string
	Kind() Kind
	Resolve(input Input) (Report, error)
	View() View
}

// RollFunc resolves a d20 check. Injected so tests control every draw.
type RollFunc func(dice.CheckRequest) dice.CheckResult

// Env carries shared dependencies for variant construction.
type Env struct {
	// Rng drives secret generation and, when Roll is nil, dice draws.
	Rng *rand.Rand
	// Roll overrides the dice resolver.
	Roll RollFunc
}

func (e Env) roll() RollFunc {
	if e.Roll != nil {
		return e.Roll
	}
	rng := e.Rng
	return func(request dice.CheckRequest) dice.CheckResult {
		if rng == nil {
			return dice.ResolveCheck(request)
		}
		return dice.ResolveCheckWithRng(rng, request)
	}
}

// Config describes one challenge instance. Only the fields relevant to the
// configured Kind are read.
type Config struct {
	ID       string
	Kind     Kind
	Requires string

	// Human.
	NPC *NPCProfile

	// Terminal. Secret pins the passcode for scripted scenarios; when
	// empty a secret is drawn from the environment RNG.
	Secret []int

	// Search.
	Spots []SearchSpot

	// Puzzle.
	Combination []int
	Hint        string
}

// New constructs the variant implementation selected by cfg.Kind.
func New(cfg Config, env Env) (Challenge, error) {
	if cfg.ID == "" {
		return nil, apperrors.New(apperrors.CodeChallengeInvalidInput, "challenge id is required")
	}
	switch cfg.Kind {
	case KindHuman:
		return newHuman(cfg, env)
	case KindTerminal:
		return newTerminal(cfg, env)
	case KindSearch:
		return newSearch(cfg, env)
	case KindSurveillance:
		return newSurveillance(cfg), nil
	case KindPuzzle:
		return newPuzzle(cfg)
	default:
		return nil, apperrors.WithMetadata(
			apperrors.CodeChallengeInvalidKind,
			fmt.Sprintf("unknown challenge kind: %s", cfg.Kind),
			map[string]string{"Kind": string(cfg.Kind)},
		)
	}
}

// View is the presentation snapshot of a challenge. Exactly one variant
// field is populated.
type View struct {
	ID           string            `json:"id"`
	Kind         Kind              `json:"kind"`
	Human        *HumanView        `json:"human,omitempty"`
	Terminal     *TerminalView     `json:"terminal,omitempty"`
	Search       *SearchView       `json:"search,omitempty"`
	Surveillance *SurveillanceView `json:"surveillance,omitempty"`
	Puzzle       *PuzzleView       `json:"puzzle,omitempty"`
}

func clampStat(v int) int {
	return min(max(v, 0), 100)
}
