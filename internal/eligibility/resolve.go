// Package eligibility derives, from a room snapshot and a local player id,
// which actions the local player may take right now. Resolve is pure: the
// same snapshot and id always produce the same ActionSet.
package eligibility

import "codenames-client/internal/game"

// ActionSet is everything the presentation and the autoplay loop need to
// know about the current turn.
type ActionSet struct {
	CanGiveClue bool
	CanGuess    bool
	CanPass     bool

	// ActiveAgentID is the AI player expected to act this turn phase,
	// empty when none qualifies. When several qualify the first in
	// roster order wins.
	ActiveAgentID   string
	ActiveAgentName string
	// CanTriggerAgent is true when the local player may request the
	// active agent's action: their own team's turn, or they host.
	CanTriggerAgent bool

	// Waiting means nothing above applies and the UI should show a
	// waiting state.
	Waiting bool
}

// Resolve computes the ActionSet for localID against a snapshot. A nil
// room, an unknown player, or a round that is not in progress all yield
// the zero ActionSet.
func Resolve(room *game.Room, localID string) ActionSet {
	var out ActionSet
	if room == nil || room.Game.Phase != game.PhasePlaying {
		return out
	}
	local, ok := room.Player(localID)
	if !ok {
		return out
	}

	st := &room.Game
	isSpymaster := local.Role == game.RoleSpymaster
	isMyTeamTurn := local.Team == st.CurrentTeam

	out.CanGiveClue = isMyTeamTurn && st.TurnPhase == game.TurnGivingClue && isSpymaster
	out.CanGuess = isMyTeamTurn && st.TurnPhase == game.TurnGuessing && !isSpymaster
	out.CanPass = out.CanGuess

	actor := game.ActorRole(st.TurnPhase)
	for _, p := range room.Players {
		if p.IsAI && p.Team == st.CurrentTeam && p.Role == actor {
			out.ActiveAgentID = p.ID
			out.ActiveAgentName = p.Name
			break
		}
	}
	if out.ActiveAgentID != "" {
		out.CanTriggerAgent = isMyTeamTurn || localID == room.HostID
	}

	out.Waiting = !out.CanGiveClue && !out.CanGuess && !out.CanPass && !out.CanTriggerAgent
	return out
}
