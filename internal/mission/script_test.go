package mission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/glass-shadow/internal/challenge"
	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
)

const testScript = `
local m = Mission.new("OPERATION: DRY RUN")
m:dossier{
  briefing = "A rehearsal site.",
  objective = "Walk the route.",
  notes = "In and out.",
}
m:room{
  id = "dock", name = "DOCK", x = 10, y = 20,
  visibility = "known", cleared = true,
  narrative = "Loading dock. Quiet.",
  intel = {"One camera"},
  exits = {"floor"},
}
m:room{
  id = "floor", name = "FLOOR",
  visibility = "known",
  exits = {"dock"},
  exit_visibility = { dock = "suspected" },
  challenges = {
    {
      id = "sweep", kind = "search",
      spots = {
        { id = "crate", name = "CRATE", dc = 8 },
        { id = "locker", name = "LOCKER", dc = 6, item = { name = "MANIFEST", type = "intel" } },
      },
    },
    { id = "lock", kind = "puzzle", requires = "sweep", combination = {1, 2, 3}, hint = "Shift badge" },
  },
}
m:start("dock")
m:line("wait", "Hold position.")
return m
`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.lua")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestLoadScript(t *testing.T) {
	scenario, err := LoadScript(writeScript(t, testScript))
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}

	if scenario.Dossier.Codename != "OPERATION: DRY RUN" {
		t.Errorf("codename = %q", scenario.Dossier.Codename)
	}
	if scenario.Dossier.Briefing != "A rehearsal site." {
		t.Errorf("briefing = %q", scenario.Dossier.Briefing)
	}
	if scenario.Start != "dock" {
		t.Errorf("start = %q, want dock", scenario.Start)
	}
	if got := scenario.Text("wait"); got != "Hold position." {
		t.Errorf("Text(wait) = %q", got)
	}
	if len(scenario.Rooms) != 2 {
		t.Fatalf("rooms = %d, want 2", len(scenario.Rooms))
	}

	dock := scenario.Rooms[0]
	wantDock := RoomDef{
		ID: "dock", Name: "DOCK", X: 10, Y: 20,
		Visibility: VisibilityKnown, Cleared: true,
		Narrative: "Loading dock. Quiet.",
		Intel:     []string{"One camera"},
		Exits:     []string{"floor"},
	}
	if diff := cmp.Diff(wantDock, dock); diff != "" {
		t.Errorf("dock mismatch (-want +got):\n%s", diff)
	}

	floor := scenario.Rooms[1]
	if len(floor.Challenges) != 2 {
		t.Fatalf("floor challenges = %d, want 2", len(floor.Challenges))
	}
	sweep := floor.Challenges[0]
	if sweep.Kind != challenge.KindSearch || len(sweep.Spots) != 2 {
		t.Fatalf("sweep = kind %q spots %d, want search with 2 spots", sweep.Kind, len(sweep.Spots))
	}
	locker := sweep.Spots[1]
	if !locker.HasItem || locker.Item.Name != "MANIFEST" || locker.Item.Type != challenge.ItemTypeIntel {
		t.Errorf("locker spot = %+v, want MANIFEST intel item", locker)
	}
	lock := floor.Challenges[1]
	if lock.Requires != "sweep" || len(lock.Combination) != 3 || lock.Hint != "Shift badge" {
		t.Errorf("lock = %+v, want puzzle gated on sweep", lock)
	}
	if floor.ExitVisibility["dock"] != VisibilitySuspected {
		t.Errorf("exit_visibility = %v, want dock suspected", floor.ExitVisibility)
	}
}

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode apperrors.Code
	}{
		{
			name:     "syntax error",
			body:     "local m = Mission.new(",
			wantCode: apperrors.CodeScenarioLoadFailed,
		},
		{
			name:     "returns a table",
			body:     "return {}",
			wantCode: apperrors.CodeScenarioInvalid,
		},
		{
			name: "room without id",
			body: `local m = Mission.new("X")
m:room{ name = "NOWHERE" }
m:start("nowhere")
return m`,
			wantCode: apperrors.CodeScenarioInvalid,
		},
		{
			name: "unknown challenge kind",
			body: `local m = Mission.new("X")
m:room{ id = "a", exits = {}, challenges = {{ id = "c", kind = "trapdoor" }} }
m:start("a")
return m`,
			wantCode: apperrors.CodeChallengeInvalidKind,
		},
		{
			name: "exit to undefined room",
			body: `local m = Mission.new("X")
m:room{ id = "a", exits = {"b"} }
m:start("a")
return m`,
			wantCode: apperrors.CodeMissionUnknownExit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript(writeScript(t, tt.body))
			if err == nil {
				t.Fatal("LoadScript() expected error")
			}
			if got := apperrors.CodeOf(err); got != tt.wantCode {
				t.Errorf("code = %v, want %v", got, tt.wantCode)
			}
		})
	}
}

func TestLoadScriptDefaultsCodenameFromFilename(t *testing.T) {
	body := `local m = Mission.new()
m:room{ id = "a", visibility = "known", exits = {} }
m:start("a")
return m`
	path := filepath.Join(t.TempDir(), "warehouse.lua")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	scenario, err := LoadScript(path)
	if err != nil {
		t.Fatalf("LoadScript() error = %v", err)
	}
	if scenario.Dossier.Codename != "WAREHOUSE" {
		t.Errorf("codename = %q, want WAREHOUSE", scenario.Dossier.Codename)
	}
}
