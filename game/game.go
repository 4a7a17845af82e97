// Package game runs one match of submarines against a single opponent.
package game

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yookoala/submarines/board"
	"github.com/yookoala/submarines/comms"
	"github.com/yookoala/submarines/protocol"
	"github.com/yookoala/submarines/validator"
	"github.com/yookoala/submarines/wire"
)

// Prompter is the player's side of the match: it supplies placements and
// guesses and is told what happened.
type Prompter interface {
	PromptPlacement(ctx context.Context, id board.ShipID) (board.Placement, error)
	InvalidPlacement(id board.ShipID, p board.Placement)
	FleetPlaced(b *board.Board)
	PromptGuess(ctx context.Context) (protocol.Coord, error)

	ReportAnswer(at protocol.Coord, statuses []protocol.AnswerStatus)
	ReportGuess(at protocol.Coord, r board.Result)
	ReportPeerError(status protocol.ErrorStatus)
	ReportOutcome(o Outcome)
}

// Game is one peer's match.
type Game struct {
	connector  comms.Connector
	ui         Prompter
	negotiator StartNegotiator
	log        *zap.SugaredLogger
	onConnect  func(*comms.Session)

	stage   Stage
	board   *board.Board
	session *comms.Session
}

// Option configures a Game.
type Option func(*Game)

// WithNegotiator sets the start-order rule. Defaults to NonceNegotiator.
func WithNegotiator(n StartNegotiator) Option {
	return func(g *Game) {
		g.negotiator = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(g *Game) {
		if l != nil {
			g.log = l
		}
	}
}

// OnConnect registers a callback run once the session is up.
func OnConnect(fn func(*comms.Session)) Option {
	return func(g *Game) {
		g.onConnect = fn
	}
}

// New creates a game that connects with c and plays through ui.
func New(c comms.Connector, ui Prompter, opts ...Option) *Game {
	g := &Game{
		connector:  c,
		ui:         ui,
		negotiator: NonceNegotiator{},
		log:        zap.NewNop().Sugar(),
		board:      board.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Stage returns the current stage.
func (g *Game) Stage() Stage {
	return g.stage
}

// Board returns this peer's own board.
func (g *Game) Board() *board.Board {
	return g.board
}

func (g *Game) setStage(s Stage) {
	g.log.Debugf("stage %s -> %s", g.stage, s)
	g.stage = s
}

// Run plays the match to the end.
//
// Losing the opponent is an outcome, not an error: it returns
// OutcomeOpponentDisconnected with a nil error. The session is closed
// before Run returns.
func (g *Game) Run(ctx context.Context) (Outcome, error) {
	s, err := g.connector.Connect(comms.WithLogger(ctx, g.log))
	if err != nil {
		g.setStage(StageFinished)
		return OutcomeUndefined, err
	}
	g.session = s
	defer s.Close()
	g.log = g.log.With("session", s.ID())
	ctx = comms.WithLogger(ctx, g.log)
	g.setStage(StageConnected)
	if g.onConnect != nil {
		g.onConnect(s)
	}

	if err := g.PlaceFleet(ctx); err != nil {
		g.setStage(StageFinished)
		return OutcomeUndefined, err
	}

	g.setStage(StageNegotiatingStart)
	starts, err := g.negotiator.Negotiate(ctx, s)
	if err != nil {
		return g.finish(OutcomeUndefined, err)
	}

	g.setStage(StagePlaying)
	return g.finish(g.play(ctx, starts))
}

// finish maps closure onto its outcome and reports the result.
func (g *Game) finish(o Outcome, err error) (Outcome, error) {
	g.setStage(StageFinished)
	if errors.Is(err, comms.ErrConnectionClosed) {
		o, err = OutcomeOpponentDisconnected, nil
	}
	if err != nil {
		g.log.Errorf("match aborted: %s", err)
		return o, err
	}
	g.log.Infof("match finished: %s", o)
	g.ui.ReportOutcome(o)
	return o, nil
}

// PlaceFleet asks for each ship in fleet order until its placement is
// valid.
func (g *Game) PlaceFleet(ctx context.Context) error {
	for _, id := range board.Fleet {
		for {
			p, err := g.ui.PromptPlacement(ctx, id)
			if err != nil {
				return fmt.Errorf("place %s: %w", id, err)
			}
			if !g.board.ValidatePlacement(id.Size(), p) {
				g.ui.InvalidPlacement(id, p)
				continue
			}
			if err := g.board.Place(id, p); err != nil {
				return err
			}
			g.log.Debugf("placed %s at %s", id, p)
			break
		}
	}
	g.setStage(StageFleetPlaced)
	g.ui.FleetPlaced(g.board)
	return nil
}

func (g *Game) play(ctx context.Context, attacking bool) (Outcome, error) {
	for {
		var o Outcome
		var err error
		if attacking {
			o, err = g.attack(ctx)
		} else {
			o, err = g.defend(ctx)
		}
		if err != nil || o != OutcomeUndefined {
			return o, err
		}
		attacking = !attacking
	}
}

// attack sends one guess and waits for its answer. A guess the opponent
// refuses is reported and asked for again.
func (g *Game) attack(ctx context.Context) (Outcome, error) {
	s := g.session
	v := validator.NewAnswer(s)
	for {
		at, err := g.ui.PromptGuess(ctx)
		if err != nil {
			return OutcomeUndefined, fmt.Errorf("prompt guess: %w", err)
		}
		if err := s.Send(protocol.Attempt{X: at.X, Y: at.Y}); err != nil {
			return OutcomeUndefined, err
		}

		f, err := await(ctx, s, v)
		var peer *validator.PeerError
		if errors.As(err, &peer) {
			g.ui.ReportPeerError(peer.Status)
			continue
		}
		if err != nil {
			return OutcomeUndefined, err
		}

		tags, _ := f.Strings(protocol.FieldStatus)
		statuses, _ := protocol.ParseAnswerStatuses(tags)
		g.ui.ReportAnswer(at, statuses)
		if protocol.ContainsStatus(statuses, protocol.StatusVictory) {
			return OutcomeVictory, nil
		}
		return OutcomeUndefined, nil
	}
}

// defend waits for one guess and answers it.
func (g *Game) defend(ctx context.Context) (Outcome, error) {
	s := g.session
	f, err := awaitQuiet(ctx, s, validator.NewAttempt(s))
	if err != nil {
		return OutcomeUndefined, err
	}
	x, _ := f.Int(protocol.FieldX)
	y, _ := f.Int(protocol.FieldY)

	r := g.board.ResolveGuess(x, y)
	g.ui.ReportGuess(protocol.Coord{X: x, Y: y}, r)
	if err := s.Send(protocol.NewAnswerAt(x, y, AnswerStatuses(r)...)); err != nil {
		return OutcomeUndefined, err
	}
	if r.IsFleetDestroyed {
		return OutcomeDefeat, nil
	}
	return OutcomeUndefined, nil
}

// AnswerStatuses composes the tags answering a guess that resolved to r.
func AnswerStatuses(r board.Result) []protocol.AnswerStatus {
	if !r.IsHit {
		return []protocol.AnswerStatus{protocol.StatusIncorrect}
	}
	statuses := make([]protocol.AnswerStatus, 0, 3)
	if r.IsFleetDestroyed {
		statuses = append(statuses, protocol.StatusVictory)
	}
	if r.CompletesSubmarine {
		statuses = append(statuses, protocol.StatusFullSubCorrect)
	}
	return append(statuses, protocol.StatusCorrect)
}

// await receives frames until v accepts one. Malformed frames are
// answered with UNEXPECTED and rejected requests are skipped. Errors the
// opponent reports come back as *validator.PeerError.
func await(ctx context.Context, s *comms.Session, v validator.Validator) (protocol.Fields, error) {
	var rejected *validator.RejectedError
	for {
		f, err := s.Receive(ctx)
		var de *wire.DecodeError
		if errors.As(err, &de) {
			err = validator.Reject(ctx, s, protocol.StatusUnexpected, "malformed frame")
			if errors.As(err, &rejected) {
				continue
			}
			return nil, err
		}
		if err != nil {
			return nil, err
		}

		err = v.Validate(ctx, f)
		if err == nil {
			return f, nil
		}
		if errors.As(err, &rejected) {
			continue
		}
		return nil, err
	}
}

// awaitQuiet is await with peer errors logged and skipped.
func awaitQuiet(ctx context.Context, s *comms.Session, v validator.Validator) (protocol.Fields, error) {
	for {
		f, err := await(ctx, s, v)
		var peer *validator.PeerError
		if errors.As(err, &peer) {
			comms.GetLogger(ctx).Warnf("opponent reported %s", peer.Status)
			continue
		}
		return f, err
	}
}
