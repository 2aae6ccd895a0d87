// Package errors provides structured error handling for game operations.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeSessionInvalidPhaseTransition Code = "SESSION_INVALID_PHASE_TRANSITION"
	CodeSessionPhaseDisallowsOp       Code = "SESSION_PHASE_DISALLOWS_OPERATION"
	CodeSessionNoActiveChallenge      Code = "SESSION_NO_ACTIVE_CHALLENGE"
	CodeSessionChallengeNotActionable Code = "SESSION_CHALLENGE_NOT_ACTIONABLE"

	// Mission errors
	CodeMissionRoomNotFound      Code = "MISSION_ROOM_NOT_FOUND"
	CodeMissionChallengeNotFound Code = "MISSION_CHALLENGE_NOT_FOUND"
	CodeMissionDuplicateRoom     Code = "MISSION_DUPLICATE_ROOM"
	CodeMissionUnknownExit       Code = "MISSION_UNKNOWN_EXIT"
	CodeMissionUnknownRequire    Code = "MISSION_UNKNOWN_REQUIREMENT"
	CodeMissionEmptyStart        Code = "MISSION_EMPTY_START_ROOM"
	CodeMissionMoveRejected      Code = "MISSION_MOVE_REJECTED"

	// Scenario script errors
	CodeScenarioLoadFailed Code = "SCENARIO_LOAD_FAILED"
	CodeScenarioInvalid    Code = "SCENARIO_INVALID"

	// Challenge errors
	CodeChallengeInvalidKind  Code = "CHALLENGE_INVALID_KIND"
	CodeChallengeInvalidInput Code = "CHALLENGE_INVALID_INPUT"

	// Random/seed errors
	CodeSeedUnavailable Code = "SEED_UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes for the
// websocket/HTTP boundary.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeMissionDuplicateRoom,
		CodeMissionUnknownExit,
		CodeMissionUnknownRequire,
		CodeMissionEmptyStart,
		CodeScenarioInvalid,
		CodeChallengeInvalidKind,
		CodeChallengeInvalidInput:
		return http.StatusBadRequest

	// Conflict - state doesn't allow the operation
	case CodeSessionInvalidPhaseTransition,
		CodeSessionPhaseDisallowsOp,
		CodeSessionNoActiveChallenge,
		CodeSessionChallengeNotActionable,
		CodeMissionMoveRejected:
		return http.StatusConflict

	// Not found - resource doesn't exist
	case CodeMissionRoomNotFound,
		CodeMissionChallengeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
