package challenge

import (
	"errors"
	"math/rand"
	"testing"

	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
)

func TestNewDispatchesByKind(t *testing.T) {
	env := Env{Rng: rand.New(rand.NewSource(11))}
	tests := []struct {
		name string
		cfg  Config
	}{
		{"human", Config{ID: "guard", Kind: KindHuman, NPC: &NPCProfile{Name: "ALAN PRICE"}}},
		{"terminal", Config{ID: "console", Kind: KindTerminal}},
		{"search", Config{ID: "archive", Kind: KindSearch, Spots: testSpots}},
		{"surveillance", Config{ID: "camera", Kind: KindSurveillance}},
		{"puzzle", Config{ID: "lock", Kind: KindPuzzle}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, env)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if c.ID() != tt.cfg.ID {
				t.Errorf("ID() = %q, want %q", c.ID(), tt.cfg.ID)
			}
			if c.Kind() != tt.cfg.Kind {
				t.Errorf("Kind() = %q, want %q", c.Kind(), tt.cfg.Kind)
			}
			view := c.View()
			if view.Kind != tt.cfg.Kind {
				t.Errorf("View().Kind = %q, want %q", view.Kind, tt.cfg.Kind)
			}
		})
	}
}

func TestNewRejectsUnknownKind(t *testing.T) {
	_, err := New(Config{ID: "x", Kind: Kind("trapdoor")}, Env{})
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !errors.Is(err, apperrors.New(apperrors.CodeChallengeInvalidKind, "")) {
		t.Errorf("error code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeChallengeInvalidKind)
	}
}

func TestNewRequiresID(t *testing.T) {
	if _, err := New(Config{Kind: KindPuzzle}, Env{}); err == nil {
		t.Fatal("expected error for missing id")
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range []Kind{KindHuman, KindTerminal, KindSearch, KindSurveillance, KindPuzzle} {
		if !k.Valid() {
			t.Errorf("Valid(%q) = false, want true", k)
		}
	}
	if Kind("trapdoor").Valid() {
		t.Error("Valid(trapdoor) = true, want false")
	}
}

func TestOutcomeSetback(t *testing.T) {
	setbacks := map[Outcome]bool{
		OutcomeCompliance: false,
		OutcomeBroken:     false,
		OutcomeBlown:      true,
		OutcomeSuccess:    false,
		OutcomeLockout:    true,
		OutcomeObjective:  false,
		OutcomePassed:     false,
		OutcomeDetected:   true,
		OutcomeUnlocked:   false,
	}
	for outcome, want := range setbacks {
		if got := outcome.Setback(); got != want {
			t.Errorf("Setback(%q) = %v, want %v", outcome, got, want)
		}
	}
}
