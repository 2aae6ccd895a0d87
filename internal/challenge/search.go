package challenge

import (
	"github.com/louisbranch/glass-shadow/internal/dice"
	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
)

// searchModifier is the flat modifier applied to every search check.
const searchModifier = 2

// SearchSpot is one searchable location within a search challenge.
type SearchSpot struct {
	ID         string
	Name       string
	HasItem    bool
	Item       Item
	Difficulty int
}

// searchChallenge resolves a sweep over a fixed set of spots. Finding an
// objective item ends the challenge; otherwise it stays active until the
// room is left behind.
type searchChallenge struct {
	id       string
	spots    []SearchSpot
	searched map[string]bool
	found    []Item
	roll     RollFunc
	done     bool
}

func newSearch(cfg Config, env Env) (*searchChallenge, error) {
	if len(cfg.Spots) == 0 {
		return nil, apperrors.New(apperrors.CodeChallengeInvalidInput, "search challenge requires at least one spot")
	}
	return &searchChallenge{
		id:       cfg.ID,
		spots:    cfg.Spots,
		searched: make(map[string]bool),
		roll:     env.roll(),
	}, nil
}

func (s *searchChallenge) ID() string { return s.id }

func (s *searchChallenge) Kind() Kind { return KindSearch }

func (s *searchChallenge) Resolve(input Input) (Report, error) {
	return s.Search(input.Spot, input.Penalty)
}

// Search examines one spot. Each spot can be searched at most once;
// repeating a searched spot is a no-op.
func (s *searchChallenge) Search(spotID string, penalty int) (Report, error) {
	if s.done {
		return Report{}, nil
	}
	spot, ok := s.spot(spotID)
	if !ok {
		return Report{}, apperrors.WithMetadata(
			apperrors.CodeChallengeInvalidInput,
			"unknown search spot",
			map[string]string{"Spot": spotID},
		)
	}
	if s.searched[spotID] {
		return Report{}, nil
	}
	s.searched[spotID] = true

	result := s.roll(dice.CheckRequest{
		Modifier:   searchModifier,
		Difficulty: spot.Difficulty,
		Penalty:    penalty,
	})

	if !result.Success || !spot.HasItem {
		return Report{
			Actions: []ActionEvent{{Label: "SEARCH", Consequence: Consequence{Heat: 5, Stress: 8}}},
		}, nil
	}

	s.found = append(s.found, spot.Item)
	item := spot.Item
	report := Report{
		Actions: []ActionEvent{{Label: "FOUND", Consequence: Consequence{Heat: 3, Stress: 5}}},
		Item:    &item,
	}
	if item.Type == ItemTypeObjective {
		s.done = true
		report.Outcome = OutcomeObjective
	}
	return report, nil
}

func (s *searchChallenge) spot(id string) (SearchSpot, bool) {
	for _, spot := range s.spots {
		if spot.ID == id {
			return spot, true
		}
	}
	return SearchSpot{}, false
}

// SpotView is the presentation snapshot of one search spot.
type SpotView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Searched  bool   `json:"searched"`
	Recovered bool   `json:"recovered"`
}

// SearchView is the presentation snapshot of a search challenge.
type SearchView struct {
	Spots []SpotView `json:"spots"`
	Found []Item     `json:"found,omitempty"`
}

func (s *searchChallenge) View() View {
	view := &SearchView{Found: append([]Item(nil), s.found...)}
	for _, spot := range s.spots {
		recovered := false
		if s.searched[spot.ID] && spot.HasItem {
			for _, item := range s.found {
				if item.Name == spot.Item.Name {
					recovered = true
					break
				}
			}
		}
		view.Spots = append(view.Spots, SpotView{
			ID:        spot.ID,
			Name:      spot.Name,
			Searched:  s.searched[spot.ID],
			Recovered: recovered,
		})
	}
	return View{ID: s.id, Kind: KindSearch, Search: view}
}
