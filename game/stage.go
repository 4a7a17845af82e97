package game

// Stage is where a peer is in the match.
type Stage int

const (
	StageInitializing Stage = iota
	StageConnected
	StageFleetPlaced
	StageNegotiatingStart
	StagePlaying
	StageFinished
)

func (s Stage) String() string {
	switch s {
	case StageInitializing:
		return "Initializing"
	case StageConnected:
		return "Connected"
	case StageFleetPlaced:
		return "FleetPlaced"
	case StageNegotiatingStart:
		return "NegotiatingStart"
	case StagePlaying:
		return "Playing"
	case StageFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// Outcome is how a match ended for this peer.
type Outcome int

const (
	OutcomeUndefined Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeOpponentDisconnected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "Victory"
	case OutcomeDefeat:
		return "Defeat"
	case OutcomeOpponentDisconnected:
		return "OpponentDisconnected"
	default:
		return "Undefined"
	}
}
