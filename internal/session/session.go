// Package session implements the operation lifecycle for one player: the
// briefing/active/debrief phase machine, the resource track (cover, heat,
// stress), movement through the mission graph, and challenge resolution.
//
// A Controller is not safe for concurrent use; the transport layer owns
// serialization.
package session

import (
	"math/rand"
	"time"

	"github.com/louisbranch/glass-shadow/internal/challenge"
	"github.com/louisbranch/glass-shadow/internal/mission"
	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
	"github.com/louisbranch/glass-shadow/internal/random"
	"github.com/louisbranch/glass-shadow/internal/stress"
)

// Phase is the session lifecycle stage.
type Phase string

const (
	// PhaseBriefing shows the dossier; no resources move.
	PhaseBriefing Phase = "briefing"
	// PhaseActive is live play.
	PhaseActive Phase = "active"
	// PhaseDebrief follows objective acquisition; the session is read-only
	// until restart.
	PhaseDebrief Phase = "debrief"
)

// Starting resources for every operation.
const (
	startCover  = 90
	startHeat   = 5
	startStress = 68
)

// waitRelief is the stress recovered by holding position; it never brings
// stress below waitFloor.
const (
	waitRelief = 15
	waitFloor  = 60
)

// stressBaseline is the resting point the passive decay drifts toward.
const stressBaseline = 60

// Resources is the session resource track.
type Resources struct {
	Cover  int `json:"cover"`
	Heat   int `json:"heat"`
	Stress int `json:"stress"`
}

// Options configures a Controller. Zero values get working defaults: a
// crypto-sourced seed, the real clock, and the standard dice resolver.
type Options struct {
	Seed  int64
	Roll  challenge.RollFunc
	Clock func() time.Time
}

// Controller drives one session over a scenario.
type Controller struct {
	scenario *mission.Scenario
	graph    *mission.Graph

	phase      Phase
	current    string
	focus      string
	live       map[string]challenge.Challenge
	resources  Resources
	inventory  []challenge.Item
	intel      []string
	objectives []string
	narrative  string

	seed  int64
	rng   *rand.Rand
	roll  challenge.RollFunc
	clock func() time.Time

	startedAt   time.Time
	completedAt time.Time
}

// New builds a Controller in the briefing phase.
func New(scenario *mission.Scenario, opts Options) (*Controller, error) {
	seed := opts.Seed
	if seed == 0 {
		s, err := random.NewSeed()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeSeedUnavailable, "derive session seed", err)
		}
		seed = s
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	c := &Controller{
		scenario: scenario,
		phase:    PhaseBriefing,
		seed:     seed,
		roll:     opts.Roll,
		clock:    clock,
	}
	if err := c.reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// reset rebuilds all mutable state from the scenario.
func (c *Controller) reset() error {
	graph, err := c.scenario.Graph()
	if err != nil {
		return err
	}
	c.graph = graph
	c.phase = PhaseBriefing
	c.current = graph.Start()
	c.focus = ""
	c.live = make(map[string]challenge.Challenge)
	c.resources = Resources{Cover: startCover, Heat: startHeat, Stress: startStress}
	c.inventory = nil
	c.intel = nil
	c.objectives = nil
	c.narrative = ""
	c.rng = rand.New(rand.NewSource(c.seed))
	c.startedAt = time.Time{}
	c.completedAt = time.Time{}
	return nil
}

// Seed is the dice seed driving this session.
func (c *Controller) Seed() int64 {
	return c.seed
}

// Phase is the current lifecycle stage.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Begin moves from briefing into live play.
func (c *Controller) Begin() error {
	if c.phase != PhaseBriefing {
		return apperrors.WithMetadata(apperrors.CodeSessionInvalidPhaseTransition,
			"begin is only valid during briefing", map[string]string{"Phase": string(c.phase)})
	}
	c.phase = PhaseActive
	c.startedAt = c.clock()
	c.narrative = c.scenario.Text(c.current)
	c.collectIntel()
	return nil
}

// collectIntel folds the current room's intel lines into the session log.
func (c *Controller) collectIntel() {
	room, ok := c.graph.Room(c.current)
	if !ok {
		return
	}
	for _, line := range room.Intel {
		known := false
		for _, have := range c.intel {
			if have == line {
				known = true
				break
			}
		}
		if !known {
			c.intel = append(c.intel, line)
		}
	}
}

// Restart abandons the run and returns to the briefing with a fresh graph
// and resource track. The seed is preserved, so a restarted session replays
// the same secrets.
func (c *Controller) Restart() error {
	return c.reset()
}

// Move attempts to relocate to an adjacent room. Illegal targets report
// false without mutating anything. A successful move drops any challenge
// focus and plays the room's narrative line.
func (c *Controller) Move(roomID string) (bool, error) {
	if err := c.requireActive("move"); err != nil {
		return false, err
	}
	if !c.graph.AttemptMove(c.current, roomID) {
		return false, nil
	}
	c.current = roomID
	c.focus = ""
	c.narrative = c.scenario.Text(roomID)
	c.collectIntel()
	return true, nil
}

// StartChallenge focuses an actionable challenge in the current room,
// creating its live instance on first focus.
func (c *Controller) StartChallenge(id string) error {
	if err := c.requireActive("challenge"); err != nil {
		return err
	}
	room, _ := c.graph.Room(c.current)
	state, ok := findChallenge(room, id)
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeMissionChallengeNotFound,
			"challenge not found in current room",
			map[string]string{"RoomID": c.current, "ChallengeID": id})
	}
	if state.Status != challenge.StatusActive {
		return apperrors.WithMetadata(apperrors.CodeSessionChallengeNotActionable,
			"challenge is not actionable",
			map[string]string{"ChallengeID": id, "Status": state.Status.String()})
	}
	key := c.current + "/" + id
	if _, ok := c.live[key]; !ok {
		instance, err := challenge.New(state.Def, challenge.Env{Rng: c.rng, Roll: c.roll})
		if err != nil {
			return err
		}
		c.live[key] = instance
	}
	c.focus = key
	return nil
}

// BackOut drops the challenge focus without resolving it. Progress on the
// live instance is kept.
func (c *Controller) BackOut() error {
	if err := c.requireActive("back"); err != nil {
		return err
	}
	c.focus = ""
	return nil
}

// ChallengeAction routes one input to the focused challenge and applies
// the reported consequences. The current stress penalty rides along on
// every input.
func (c *Controller) ChallengeAction(input challenge.Input) error {
	if err := c.requireActive("challenge_action"); err != nil {
		return err
	}
	if c.focus == "" {
		return apperrors.New(apperrors.CodeSessionNoActiveChallenge, "no challenge in focus")
	}
	instance := c.live[c.focus]
	input.Penalty = stress.EffectsFor(c.resources.Stress).RollPenalty

	report, err := instance.Resolve(input)
	if err != nil {
		return err
	}
	c.applyReport(instance, report)
	return nil
}

func (c *Controller) applyReport(instance challenge.Challenge, report challenge.Report) {
	for _, action := range report.Actions {
		c.applyConsequence(action.Consequence)
	}
	if report.Item != nil {
		c.inventory = append(c.inventory, *report.Item)
		if report.Item.Type == challenge.ItemTypeObjective {
			c.objectives = append(c.objectives, report.Item.Name)
		}
	}
	if !report.Terminal() {
		return
	}

	// Terminal outcome: the graph bookkeeping runs regardless of whether
	// the outcome was a setback.
	if err := c.graph.ResolveChallenge(c.current, instance.ID()); err == nil {
		if report.Outcome.Setback() {
			c.narrative = c.scenario.Text(mission.NarrativeSetback)
		} else {
			c.narrative = c.scenario.Text(mission.NarrativeClear)
		}
	}
	c.focus = ""

	if report.Item != nil && report.Item.Type == challenge.ItemTypeObjective {
		c.narrative = c.scenario.Text(mission.NarrativeObjective)
		c.phase = PhaseDebrief
		c.completedAt = c.clock()
	}
}

// applyConsequence folds one consequence into the resource track. Heat and
// cover clamp to [0,100], stress to [50,180]. Heavy heat spikes also erode
// cover.
func (c *Controller) applyConsequence(q challenge.Consequence) {
	c.resources.Heat = clamp(c.resources.Heat+q.Heat, 0, 100)
	c.resources.Stress = clamp(c.resources.Stress+q.Stress, stress.PulseMin, stress.PulseMax)
	if q.Heat > 20 {
		c.resources.Cover = clamp(c.resources.Cover-15, 0, 100)
	}
}

// Wait holds position, bleeding off stress.
func (c *Controller) Wait() error {
	if err := c.requireActive("wait"); err != nil {
		return err
	}
	if c.resources.Stress > waitFloor {
		c.resources.Stress = max(waitFloor, c.resources.Stress-waitRelief)
	}
	c.narrative = c.scenario.Text(mission.NarrativeWait)
	return nil
}

// Look surveys the current room without touching any resource.
func (c *Controller) Look() error {
	if err := c.requireActive("look"); err != nil {
		return err
	}
	c.narrative = c.scenario.Text(mission.NarrativeLook)
	return nil
}

// Inventory lists the items carried.
func (c *Controller) Inventory() []challenge.Item {
	return append([]challenge.Item(nil), c.inventory...)
}

// TickStressDecay drifts stress one point toward its baseline. Only live
// play decays; briefing and debrief freeze the track.
func (c *Controller) TickStressDecay() {
	if c.phase != PhaseActive {
		return
	}
	switch {
	case c.resources.Stress > stressBaseline:
		c.resources.Stress--
	case c.resources.Stress < stressBaseline:
		c.resources.Stress++
	}
}

// TickSurveillance advances every live patrol cycle one tick.
func (c *Controller) TickSurveillance() {
	if c.phase != PhaseActive {
		return
	}
	for _, instance := range c.live {
		if patrol, ok := instance.(interface{ Advance() }); ok {
			patrol.Advance()
		}
	}
}

func (c *Controller) requireActive(op string) error {
	if c.phase != PhaseActive {
		return apperrors.WithMetadata(apperrors.CodeSessionPhaseDisallowsOp,
			"operation requires an active session",
			map[string]string{"Operation": op, "Phase": string(c.phase)})
	}
	return nil
}

func findChallenge(room *mission.Room, id string) (*mission.ChallengeState, bool) {
	if room == nil {
		return nil, false
	}
	for _, cs := range room.Challenges {
		if cs.Def.ID == id {
			return cs, true
		}
	}
	return nil, false
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
