package ui

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/yookoala/submarines/board"
	"github.com/yookoala/submarines/game"
	"github.com/yookoala/submarines/protocol"
)

// ErrOutOfGuesses is returned once a bot has tried every cell.
var ErrOutOfGuesses = errors.New("no cell left to guess")

// BotFleet is the fixed layout a bot places.
var BotFleet = map[board.ShipID]board.Placement{
	board.ShipIDCarrier:    {Alignment: board.Horizontal, Axis: 1, Start: 2, End: 6},
	board.ShipIDBattleship: {Alignment: board.Vertical, Axis: 8, Start: 3, End: 6},
	board.ShipIDCruiser:    {Alignment: board.Horizontal, Axis: 5, Start: 0, End: 2},
	board.ShipIDSubmarine:  {Alignment: board.Vertical, Axis: 4, Start: 6, End: 8},
	board.ShipIDDestroyer:  {Alignment: board.Horizontal, Axis: 9, Start: 7, End: 8},
}

// Bot plays without a person. It guesses every cell once, row by row or
// in a shuffled order.
type Bot struct {
	log *zap.SugaredLogger

	mu      sync.Mutex
	order   []protocol.Coord
	next    int
	outcome game.Outcome
}

// NewBot returns a bot that logs to log. A non-zero seed shuffles the
// guessing order.
func NewBot(log *zap.SugaredLogger, seed int64) *Bot {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	order := make([]protocol.Coord, 0, board.BoardSize*board.BoardSize)
	for x := 0; x < board.BoardSize; x++ {
		for y := 0; y < board.BoardSize; y++ {
			order = append(order, protocol.Coord{X: x, Y: y})
		}
	}
	if seed != 0 {
		r := rand.New(rand.NewSource(seed))
		r.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return &Bot{log: log.Named("bot"), order: order}
}

// PromptPlacement implements game.Prompter.
func (b *Bot) PromptPlacement(ctx context.Context, id board.ShipID) (board.Placement, error) {
	return BotFleet[id], nil
}

// InvalidPlacement implements game.Prompter.
func (b *Bot) InvalidPlacement(id board.ShipID, p board.Placement) {
	b.log.Errorf("fleet layout rejected %s at %s", id, p)
}

// FleetPlaced implements game.Prompter.
func (b *Bot) FleetPlaced(bd *board.Board) {
	b.log.Debugf("fleet placed:\n%s", bd)
}

// PromptGuess implements game.Prompter.
func (b *Bot) PromptGuess(ctx context.Context) (protocol.Coord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.next >= len(b.order) {
		return protocol.Coord{}, ErrOutOfGuesses
	}
	at := b.order[b.next]
	b.next++
	return at, nil
}

// ReportAnswer implements game.Prompter.
func (b *Bot) ReportAnswer(at protocol.Coord, statuses []protocol.AnswerStatus) {
	b.log.Debugf("guess %s: %v", at, statuses)
}

// ReportGuess implements game.Prompter.
func (b *Bot) ReportGuess(at protocol.Coord, r board.Result) {
	b.log.Debugf("opponent guessed %s, hit: %t", at, r.IsHit)
}

// ReportPeerError implements game.Prompter.
func (b *Bot) ReportPeerError(status protocol.ErrorStatus) {
	b.log.Warnf("guess refused: %s", status)
}

// ReportOutcome implements game.Prompter.
func (b *Bot) ReportOutcome(o game.Outcome) {
	b.mu.Lock()
	b.outcome = o
	b.mu.Unlock()
	b.log.Infof("match over: %s", o)
}

// Outcome returns the last reported outcome.
func (b *Bot) Outcome() game.Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outcome
}
