package truco

// Mode is the team composition of a match: players per team.
type Mode byte

const (
	ModeOneVsOne     Mode = 1
	ModeTwoVsTwo     Mode = 2
	ModeThreeVsThree Mode = 3
)

func (m Mode) valid() bool {
	return m == ModeOneVsOne || m == ModeTwoVsTwo || m == ModeThreeVsThree
}

// PlayerCount is the full roster size for the mode.
func (m Mode) PlayerCount() int { return int(m) * 2 }

func (m Mode) String() string {
	switch m {
	case ModeOneVsOne:
		return "1v1"
	case ModeTwoVsTwo:
		return "2v2"
	case ModeThreeVsThree:
		return "3v3"
	}
	return "unknown"
}

// MatchState is the match lifecycle state.
type MatchState byte

const (
	StateConfiguring MatchState = iota
	StatePlaying
	StateFinished
	StateErrored
)

var MatchStateDictionary = map[MatchState]string{
	StateConfiguring: "configuring",
	StatePlaying:     "playing",
	StateFinished:    "finished",
	StateErrored:     "errored",
}

func (s MatchState) String() string { return MatchStateDictionary[s] }

// RoundPhase is the trick-sequencing phase within one round.
type RoundPhase byte

const (
	PhaseDealing RoundPhase = iota
	PhaseHandOne
	PhaseHandTwo
	PhaseHandThree
	PhaseResolved
)

var RoundPhaseDictionary = map[RoundPhase]string{
	PhaseDealing:   "dealing",
	PhaseHandOne:   "hand1",
	PhaseHandTwo:   "hand2",
	PhaseHandThree: "hand3",
	PhaseResolved:  "resolved",
}

func (p RoundPhase) String() string { return RoundPhaseDictionary[p] }

// ActionType identifies a player action submitted through Apply.
type ActionType byte

const (
	ActionPlayCard ActionType = iota + 1
	ActionCallEnvido
	ActionCallTruco
	ActionRespond
	ActionDeclarePoints
	ActionSonBuenas
	ActionConcede
)

var ActionTypeDictionary = map[ActionType]string{
	ActionPlayCard:      "PLAY_CARD",
	ActionCallEnvido:    "CALL_ENVIDO",
	ActionCallTruco:     "CALL_TRUCO",
	ActionRespond:       "RESPOND",
	ActionDeclarePoints: "DECLARE_ENVIDO_POINTS",
	ActionSonBuenas:     "SAY_SON_BUENAS",
	ActionConcede:       "CONCEDE",
}

func (a ActionType) String() string { return ActionTypeDictionary[a] }

// EnvidoLevel is one step of the envido escalation ladder.
type EnvidoLevel byte

const (
	Envido EnvidoLevel = iota + 1
	RealEnvido
	FaltaEnvido
)

var EnvidoLevelDictionary = map[EnvidoLevel]string{
	Envido:      "ENVIDO",
	RealEnvido:  "REAL_ENVIDO",
	FaltaEnvido: "FALTA_ENVIDO",
}

func (l EnvidoLevel) String() string { return EnvidoLevelDictionary[l] }

// TrucoLevel is one step of the truco stake ladder.
type TrucoLevel byte

const (
	Truco TrucoLevel = iota + 1
	Retruco
	ValeCuatro
)

var TrucoLevelDictionary = map[TrucoLevel]string{
	Truco:      "TRUCO",
	Retruco:    "RETRUCO",
	ValeCuatro: "VALE_CUATRO",
}

func (l TrucoLevel) String() string { return TrucoLevelDictionary[l] }

// Response answers a pending canto. Escalations are their own CALL_*
// actions, so a response is always one of these two.
type Response byte

const (
	Quiero Response = iota + 1
	NoQuiero
)

func (r Response) String() string {
	switch r {
	case Quiero:
		return "QUIERO"
	case NoQuiero:
		return "NO_QUIERO"
	}
	return "unknown"
}

// Action is the single intake payload for every player move. Only the
// fields relevant to Type are read.
type Action struct {
	Type     ActionType
	CardID   uint8
	Envido   EnvidoLevel
	Truco    TrucoLevel
	Response Response
	Points   int
}

// StepResult reports what a committed action did, so the hosting actor
// can notify and persist without re-deriving it from snapshots.
type StepResult struct {
	Event         string
	RoundNumber   int
	RoundFinished bool
	MatchFinished bool
	WinningTeam   string
	Summary       *RoundSummary
}

// HandOutcome is one resolved trick in a round summary. Winner is the
// team id, empty on parda.
type HandOutcome struct {
	Winner string `json:"winner"`
}

// RoundSummary is the record a destroyed round leaves in match history.
type RoundSummary struct {
	Number       int           `json:"number"`
	WinnerTeam   string        `json:"winner_team"`
	TrucoPoints  int           `json:"truco_points"`
	EnvidoTeam   string        `json:"envido_team"`
	EnvidoPoints int           `json:"envido_points"`
	Hands        []HandOutcome `json:"hands"`
}
