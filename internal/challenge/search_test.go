package challenge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/glass-shadow/internal/dice"
)

var testSpots = []SearchSpot{
	{ID: "desk", Name: "RECORDS DESK", Difficulty: 8},
	{ID: "cabinet", Name: "FILE CABINET", HasItem: true, Item: Item{Name: "VAULT KEY", Type: ItemTypeKey}, Difficulty: 12},
	{ID: "box", Name: "BOX 1148", HasItem: true, Item: Item{Name: "TARGET DOCS", Type: ItemTypeObjective}, Difficulty: 10},
}

func newTestSearch(t *testing.T, roll RollFunc) *searchChallenge {
	t.Helper()
	s, err := newSearch(Config{ID: "archive", Kind: KindSearch, Spots: testSpots}, Env{Roll: roll})
	if err != nil {
		t.Fatalf("newSearch() error = %v", err)
	}
	return s
}

func TestSearchRequiresSpots(t *testing.T) {
	if _, err := newSearch(Config{ID: "archive", Kind: KindSearch}, Env{}); err == nil {
		t.Fatal("expected error for empty spot list")
	}
}

func TestSearchEmptySpot(t *testing.T) {
	roll, last := stubRoll(dice.CheckResult{Success: true})
	s := newTestSearch(t, roll)

	report, err := s.Search("desk", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if report.Actions[0].Label != "SEARCH" {
		t.Errorf("label = %q, want SEARCH", report.Actions[0].Label)
	}
	if got := report.Actions[0].Consequence; got != (Consequence{Heat: 5, Stress: 8}) {
		t.Errorf("consequence = %+v, want {5 8}", got)
	}
	if last.Modifier != searchModifier || last.Difficulty != 8 || last.Penalty != 1 {
		t.Errorf("request = %+v, want modifier 2 difficulty 8 penalty 1", *last)
	}
}

func TestSearchFailedRollFindsNothing(t *testing.T) {
	roll, _ := stubRoll(dice.CheckResult{Success: false})
	s := newTestSearch(t, roll)

	report, err := s.Search("cabinet", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if report.Item != nil {
		t.Errorf("item = %+v, want nil on failed roll", report.Item)
	}
	if len(s.found) != 0 {
		t.Errorf("found = %v, want empty", s.found)
	}
}

func TestSearchFindsKeyItem(t *testing.T) {
	roll, _ := stubRoll(dice.CheckResult{Success: true})
	s := newTestSearch(t, roll)

	report, err := s.Search("cabinet", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if report.Terminal() {
		t.Fatalf("outcome = %q, key items must not end the search", report.Outcome)
	}
	if report.Item == nil || report.Item.Name != "VAULT KEY" {
		t.Fatalf("item = %+v, want VAULT KEY", report.Item)
	}
	if got := report.Actions[0].Consequence; got != (Consequence{Heat: 3, Stress: 5}) {
		t.Errorf("consequence = %+v, want {3 5}", got)
	}
}

func TestSearchObjectiveEndsChallenge(t *testing.T) {
	roll, _ := stubRoll(dice.CheckResult{Success: true})
	s := newTestSearch(t, roll)

	report, err := s.Search("box", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if report.Outcome != OutcomeObjective {
		t.Fatalf("outcome = %q, want %q", report.Outcome, OutcomeObjective)
	}
	if report.Item == nil || report.Item.Type != ItemTypeObjective {
		t.Fatalf("item = %+v, want objective item", report.Item)
	}

	// The challenge is done; further spots are inert.
	after, err := s.Search("desk", 0)
	if err != nil {
		t.Fatalf("Search() after objective error = %v", err)
	}
	if len(after.Actions) != 0 {
		t.Errorf("Search() after objective = %+v, want empty report", after)
	}
}

func TestSearchSpotOnlyOnce(t *testing.T) {
	calls := 0
	s := newTestSearch(t, func(dice.CheckRequest) dice.CheckResult {
		calls++
		return dice.CheckResult{Success: false}
	})

	if _, err := s.Search("desk", 0); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	report, err := s.Search("desk", 0)
	if err != nil {
		t.Fatalf("repeat Search() error = %v", err)
	}
	if len(report.Actions) != 0 {
		t.Errorf("repeat Search() = %+v, want no-op", report)
	}
	if calls != 1 {
		t.Errorf("roll calls = %d, want 1", calls)
	}
}

func TestSearchUnknownSpot(t *testing.T) {
	roll, _ := stubRoll(dice.CheckResult{Success: true})
	s := newTestSearch(t, roll)

	if _, err := s.Search("vent", 0); err == nil {
		t.Fatal("expected error for unknown spot")
	}
}

func TestSearchView(t *testing.T) {
	roll, _ := stubRoll(dice.CheckResult{Success: true})
	s := newTestSearch(t, roll)

	if _, err := s.Search("cabinet", 0); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	view := s.View().Search
	want := []SpotView{
		{ID: "desk", Name: "RECORDS DESK"},
		{ID: "cabinet", Name: "FILE CABINET", Searched: true, Recovered: true},
		{ID: "box", Name: "BOX 1148"},
	}
	if diff := cmp.Diff(want, view.Spots); diff != "" {
		t.Errorf("spots mismatch (-want +got):\n%s", diff)
	}
	if len(view.Found) != 1 || view.Found[0].Name != "VAULT KEY" {
		t.Errorf("found = %v, want [VAULT KEY]", view.Found)
	}
}
