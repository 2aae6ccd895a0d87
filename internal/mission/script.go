package mission

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/louisbranch/glass-shadow/internal/challenge"
	apperrors "github.com/louisbranch/glass-shadow/internal/platform/errors"
)

const missionTypeName = "mission"

// scriptMission accumulates the scenario while the lua script runs.
type scriptMission struct {
	dossier   Dossier
	rooms     []map[string]any
	start     string
	narrative map[string]string
}

// LoadScript runs a lua scenario script and builds the scenario it
// describes. The script receives a Mission constructor and must return the
// mission userdata:
//
//	local m = Mission.new("OPERATION: EXAMPLE")
//	m:room{ id = "entry", name = "ENTRY", visibility = "known", exits = {"hall"} }
//	m:start("entry")
//	m:line("wait", "Hold position.")
//	return m
func LoadScript(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerMissionType(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeScenarioLoadFailed, "load scenario script", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeScenarioLoadFailed, "run scenario script", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, apperrors.New(apperrors.CodeScenarioInvalid, "scenario script must return a Mission")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	m, ok := ud.(*scriptMission)
	if !ok || m == nil {
		return nil, apperrors.New(apperrors.CodeScenarioInvalid, "scenario script returned invalid Mission")
	}

	scenario, err := m.build()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Dossier.Codename) == "" {
		scenario.Dossier.Codename = strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}
	return scenario, nil
}

func (m *scriptMission) build() (*Scenario, error) {
	scenario := &Scenario{
		Dossier:   m.dossier,
		Start:     m.start,
		Narrative: m.narrative,
	}
	if scenario.Narrative == nil {
		scenario.Narrative = map[string]string{}
	}
	for _, raw := range m.rooms {
		def, err := decodeRoom(raw)
		if err != nil {
			return nil, err
		}
		scenario.Rooms = append(scenario.Rooms, def)
	}
	// Validate the graph eagerly so script errors surface at load time.
	if _, err := NewGraph(scenario.Rooms, scenario.Start); err != nil {
		return nil, err
	}
	return scenario, nil
}

func decodeRoom(raw map[string]any) (RoomDef, error) {
	def := RoomDef{
		ID:         asString(raw["id"]),
		Name:       asString(raw["name"]),
		X:          asInt(raw["x"]),
		Y:          asInt(raw["y"]),
		Visibility: Visibility(asString(raw["visibility"])),
		Cleared:    asBool(raw["cleared"]),
		Narrative:  asString(raw["narrative"]),
		Intel:      asStrings(raw["intel"]),
		Exits:      asStrings(raw["exits"]),
	}
	if def.ID == "" {
		return RoomDef{}, apperrors.New(apperrors.CodeScenarioInvalid, "room is missing an id")
	}
	if vis, ok := raw["exit_visibility"].(map[string]any); ok {
		def.ExitVisibility = make(map[string]Visibility, len(vis))
		for exit, v := range vis {
			def.ExitVisibility[exit] = Visibility(asString(v))
		}
	}
	if list, ok := raw["challenges"].([]any); ok {
		for _, entry := range list {
			table, ok := entry.(map[string]any)
			if !ok {
				return RoomDef{}, apperrors.WithMetadata(apperrors.CodeScenarioInvalid,
					"challenge entry must be a table", map[string]string{"RoomID": def.ID})
			}
			cfg, err := decodeChallenge(table)
			if err != nil {
				return RoomDef{}, err
			}
			def.Challenges = append(def.Challenges, cfg)
		}
	}
	return def, nil
}

func decodeChallenge(raw map[string]any) (challenge.Config, error) {
	cfg := challenge.Config{
		ID:          asString(raw["id"]),
		Kind:        challenge.Kind(asString(raw["kind"])),
		Requires:    asString(raw["requires"]),
		Secret:      asInts(raw["secret"]),
		Combination: asInts(raw["combination"]),
		Hint:        asString(raw["hint"]),
	}
	if npc, ok := raw["npc"].(map[string]any); ok {
		cfg.NPC = &challenge.NPCProfile{
			Name:       asString(npc["name"]),
			Role:       asString(npc["role"]),
			Composure:  asInt(npc["composure"]),
			Suspicion:  asInt(npc["suspicion"]),
			Compliance: asInt(npc["compliance"]),
		}
	}
	if spots, ok := raw["spots"].([]any); ok {
		for _, entry := range spots {
			table, ok := entry.(map[string]any)
			if !ok {
				return challenge.Config{}, apperrors.WithMetadata(apperrors.CodeScenarioInvalid,
					"search spot must be a table", map[string]string{"ChallengeID": cfg.ID})
			}
			spot := challenge.SearchSpot{
				ID:         asString(table["id"]),
				Name:       asString(table["name"]),
				HasItem:    asBool(table["has_item"]),
				Difficulty: asInt(table["dc"]),
			}
			if item, ok := table["item"].(map[string]any); ok {
				spot.HasItem = true
				spot.Item = challenge.Item{
					Name: asString(item["name"]),
					Type: challenge.ItemType(asString(item["type"])),
				}
			}
			cfg.Spots = append(cfg.Spots, spot)
		}
	}
	if !cfg.Kind.Valid() {
		return challenge.Config{}, apperrors.WithMetadata(apperrors.CodeChallengeInvalidKind,
			"unknown challenge kind", map[string]string{"ChallengeID": cfg.ID, "Kind": string(cfg.Kind)})
	}
	return cfg, nil
}

func registerMissionType(state *lua.State) {
	lua.NewMetaTable(state, missionTypeName)
	state.NewTable()
	lua.SetFunctions(state, missionMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, missionConstructor, 0)
	state.SetGlobal("Mission")
}

var missionConstructor = []lua.RegistryFunction{
	{Name: "new", Function: missionNew},
}

var missionMethods = []lua.RegistryFunction{
	{Name: "dossier", Function: missionDossier},
	{Name: "room", Function: missionRoom},
	{Name: "start", Function: missionStart},
	{Name: "line", Function: missionLine},
}

func missionNew(state *lua.State) int {
	codename := lua.OptString(state, 1, "")
	m := &scriptMission{narrative: map[string]string{}}
	m.dossier.Codename = codename
	state.PushUserData(m)
	lua.SetMetaTableNamed(state, missionTypeName)
	return 1
}

func missionDossier(state *lua.State) int {
	m := checkMission(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	m.dossier.Briefing = asString(data["briefing"])
	m.dossier.Objective = asString(data["objective"])
	m.dossier.Personnel = asString(data["personnel"])
	m.dossier.Hazards = asString(data["hazards"])
	m.dossier.Notes = asString(data["notes"])
	if codename := asString(data["codename"]); codename != "" {
		m.dossier.Codename = codename
	}
	return 0
}

func missionRoom(state *lua.State) int {
	m := checkMission(state)
	lua.CheckType(state, 2, lua.TypeTable)
	m.rooms = append(m.rooms, tableToMap(state, 2))
	return 0
}

func missionStart(state *lua.State) int {
	m := checkMission(state)
	m.start = lua.CheckString(state, 2)
	return 0
}

func missionLine(state *lua.State) int {
	m := checkMission(state)
	key := lua.CheckString(state, 2)
	m.narrative[key] = lua.CheckString(state, 3)
	return 0
}

func checkMission(state *lua.State) *scriptMission {
	ud := lua.CheckUserData(state, 1, missionTypeName)
	if m, ok := ud.(*scriptMission); ok && m != nil {
		return m
	}
	lua.ArgumentError(state, 1, "mission expected")
	return nil
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, entry := range list {
		out = append(out, asString(entry))
	}
	return out
}

func asInts(v any) []int {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(list))
	for _, entry := range list {
		out = append(out, asInt(entry))
	}
	return out
}
