package game

// Team is a side of the board. The empty string means unassigned; the
// server serializes unassigned players with a null team.
type Team string

const (
	TeamRed  Team = "red"
	TeamBlue Team = "blue"
)

// Role is a player's job on their team. Empty means not chosen yet.
type Role string

const (
	RoleSpymaster Role = "spymaster"
	RoleOperative Role = "operative"
)

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// TurnPhase is only meaningful while Phase is PhasePlaying.
type TurnPhase string

const (
	TurnGivingClue TurnPhase = "giving_clue"
	TurnGuessing   TurnPhase = "guessing"
)

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team Team   `json:"team,omitempty"`
	Role Role   `json:"role,omitempty"`
	IsAI bool   `json:"is_ai"`
}

// Card is one board tile. Color is present only when the card is revealed
// or the server built a spymaster view for us.
type Card struct {
	Word     string `json:"word"`
	Position int    `json:"position"`
	Revealed bool   `json:"revealed"`
	Color    string `json:"color,omitempty"`
}

type Clue struct {
	Word        string `json:"word"`
	Number      int    `json:"number"`
	Team        Team   `json:"team"`
	GuessesMade int    `json:"guesses_made"`
}

// GuessesAllowed is always the clue number plus one bonus guess.
func (c Clue) GuessesAllowed() int { return c.Number + 1 }

// State is the round sub-state of a room snapshot.
type State struct {
	Phase         Phase     `json:"phase"`
	CurrentTeam   Team      `json:"current_team"`
	TurnPhase     TurnPhase `json:"turn_phase"`
	Cards         []Card    `json:"cards"`
	CurrentClue   *Clue     `json:"current_clue,omitempty"`
	ClueHistory   []Clue    `json:"clue_history"`
	RedRemaining  int       `json:"red_remaining"`
	BlueRemaining int       `json:"blue_remaining"`
	StartingTeam  Team      `json:"starting_team"`
	Winner        Team      `json:"winner,omitempty"`
	Transcript    []string  `json:"transcript"`
}

// Room is the full snapshot pushed by the server. It is replaced wholesale
// on every game_state message and never mutated field by field.
type Room struct {
	RoomID   string   `json:"room_id"`
	GameName string   `json:"game_name"`
	Players  []Player `json:"players"`
	HostID   string   `json:"host_id"`
	Game     State    `json:"game"`
}

// Player returns the roster entry with the given id.
func (r *Room) Player(id string) (Player, bool) {
	for _, p := range r.Players {
		if p.ID == id {
			return p, true
		}
	}
	return Player{}, false
}

// CardAt returns the card at a board position.
func (s *State) CardAt(position int) (Card, bool) {
	for _, c := range s.Cards {
		if c.Position == position {
			return c, true
		}
	}
	return Card{}, false
}

// ActorRole is the role expected to act during a turn phase.
func ActorRole(tp TurnPhase) Role {
	if tp == TurnGivingClue {
		return RoleSpymaster
	}
	return RoleOperative
}

// HasAgent reports whether any roster entry is an AI player.
func (r *Room) HasAgent() bool {
	for _, p := range r.Players {
		if p.IsAI {
			return true
		}
	}
	return false
}

// CanStart mirrors the lobby start conditions: at least two players per
// team and a spymaster on each side.
func (r *Room) CanStart() bool {
	var red, blue int
	var redSpy, blueSpy bool
	for _, p := range r.Players {
		switch p.Team {
		case TeamRed:
			red++
			if p.Role == RoleSpymaster {
				redSpy = true
			}
		case TeamBlue:
			blue++
			if p.Role == RoleSpymaster {
				blueSpy = true
			}
		}
	}
	return red >= 2 && blue >= 2 && redSpy && blueSpy
}
