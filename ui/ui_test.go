package ui_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/yookoala/submarines/board"
	"github.com/yookoala/submarines/game"
	"github.com/yookoala/submarines/protocol"
	"github.com/yookoala/submarines/ui"
)

func TestConsole_PromptPlacement(t *testing.T) {
	in := strings.NewReader("diagonal\nV\nthree\n3\n5\n2\n")
	var out bytes.Buffer
	c := ui.NewConsole(in, &out)

	p, err := c.PromptPlacement(context.Background(), board.ShipIDBattleship)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	want := board.Placement{Alignment: board.Vertical, Axis: 3, Start: 5, End: 2}
	if want != p {
		t.Errorf("unexpected placement. want %#v, have %#v", want, p)
	}
	if !strings.Contains(out.String(), "Battleship of size 4") {
		t.Errorf("expected the ship to be named, have %q", out.String())
	}
	if !strings.Contains(out.String(), "Invalid alignment") {
		t.Errorf("expected the bad alignment to be reported, have %q", out.String())
	}
	if !strings.Contains(out.String(), `"three" is not a number`) {
		t.Errorf("expected the bad number to be reported, have %q", out.String())
	}
}

func TestConsole_PromptGuess(t *testing.T) {
	c := ui.NewConsole(strings.NewReader(" 4 \n7\n"), io.Discard)
	at, err := c.PromptGuess(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if want, have := (protocol.Coord{X: 4, Y: 7}), at; want != have {
		t.Errorf("want %s, have %s", want, have)
	}

	if _, err := c.PromptGuess(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, have %v", err)
	}
}

func TestConsole_PromptGuess_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := ui.NewConsole(strings.NewReader("1\n1\n"), io.Discard)
	if _, err := c.PromptGuess(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context canceled, have %v", err)
	}
}

// promptSignal reports every prompt written to it.
type promptSignal chan struct{}

func (p promptSignal) Write(b []byte) (int, error) {
	select {
	case p <- struct{}{}:
	default:
	}
	return len(b), nil
}

func TestConsole_PromptGuess_CancelledWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	prompted := make(promptSignal, 1)
	c := ui.NewConsole(pr, prompted)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := c.PromptGuess(ctx)
		errc <- err
	}()

	select {
	case <-prompted:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the prompt")
	}
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context canceled, have %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prompt did not return after cancel")
	}

	// Input typed after the cancel still reaches the next prompt.
	go pw.Write([]byte("5\n6\n"))
	at, err := c.PromptGuess(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if want, have := (protocol.Coord{X: 5, Y: 6}), at; want != have {
		t.Errorf("want %s, have %s", want, have)
	}
}

func TestConsole_Reports(t *testing.T) {
	var out bytes.Buffer
	c := ui.NewConsole(strings.NewReader(""), &out)

	tests := []struct {
		report func()
		want   string
	}{
		{func() { c.ReportOutcome(game.OutcomeVictory) }, "You Win! :)"},
		{func() { c.ReportOutcome(game.OutcomeDefeat) }, "You Lose! :("},
		{func() { c.ReportOutcome(game.OutcomeOpponentDisconnected) }, "Connection with opponent was closed."},
		{func() {
			c.ReportAnswer(protocol.Coord{X: 1, Y: 2}, []protocol.AnswerStatus{protocol.StatusFullSubCorrect, protocol.StatusCorrect})
		}, "(1, 2): hit and sunk"},
		{func() { c.ReportAnswer(protocol.Coord{}, []protocol.AnswerStatus{protocol.StatusIncorrect}) }, "miss"},
		{func() { c.ReportGuess(protocol.Coord{X: 3, Y: 3}, board.Result{IsHit: true}) }, "Opponent hit (3, 3)"},
		{func() { c.ReportPeerError(protocol.StatusOutOfRange) }, "off the board"},
		{func() { c.InvalidPlacement(board.ShipIDCarrier, board.Placement{}) }, "Invalid submarine location"},
	}
	for _, tt := range tests {
		out.Reset()
		tt.report()
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("expected %q in %q", tt.want, out.String())
		}
	}
}

func TestConsole_FleetPlaced(t *testing.T) {
	b := board.New()
	if err := b.Place(board.ShipIDDestroyer, board.Placement{Alignment: board.Horizontal, Axis: 0, Start: 0, End: 1}); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	var out bytes.Buffer
	ui.NewConsole(strings.NewReader(""), &out).FleetPlaced(b)
	if want, have := 2, strings.Count(out.String(), "S"); want != have {
		t.Errorf("unexpected ship marks. want %d, have %d\n%s", want, have, out.String())
	}
	if want := "Destroyer: (0, 0) (0, 1)"; !strings.Contains(out.String(), want) {
		t.Errorf("expected %q in %q", want, out.String())
	}
}

func TestBotFleet_Valid(t *testing.T) {
	b := board.New()
	bot := ui.NewBot(zaptest.NewLogger(t).Sugar(), 0)
	for _, id := range board.Fleet {
		p, err := bot.PromptPlacement(context.Background(), id)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !b.ValidatePlacement(id.Size(), p) {
			t.Fatalf("invalid placement for %s: %s", id, p)
		}
		if err := b.Place(id, p); err != nil {
			t.Fatalf("unexpected error placing: %s", err)
		}
	}
	if want, have := 17, b.ShipCells(); want != have {
		t.Errorf("unexpected ship cells. want %d, have %d", want, have)
	}
}

func TestBot_Guesses(t *testing.T) {
	for _, seed := range []int64{0, 42} {
		bot := ui.NewBot(nil, seed)
		seen := map[protocol.Coord]bool{}
		for i := 0; i < board.BoardSize*board.BoardSize; i++ {
			at, err := bot.PromptGuess(context.Background())
			if err != nil {
				t.Fatalf("seed %d: unexpected error: %s", seed, err)
			}
			if at.X < 0 || at.X >= board.BoardSize || at.Y < 0 || at.Y >= board.BoardSize {
				t.Fatalf("seed %d: guess off the board: %s", seed, at)
			}
			if seen[at] {
				t.Fatalf("seed %d: repeated guess %s", seed, at)
			}
			seen[at] = true
		}
		if _, err := bot.PromptGuess(context.Background()); !errors.Is(err, ui.ErrOutOfGuesses) {
			t.Errorf("seed %d: expected ErrOutOfGuesses, have %v", seed, err)
		}
	}

	// The same seed gives the same order.
	a, b := ui.NewBot(nil, 7), ui.NewBot(nil, 7)
	for i := 0; i < 10; i++ {
		x, _ := a.PromptGuess(context.Background())
		y, _ := b.PromptGuess(context.Background())
		if x != y {
			t.Fatalf("expected identical order, differ at %d: %s and %s", i, x, y)
		}
	}
}

func TestBot_Outcome(t *testing.T) {
	bot := ui.NewBot(zaptest.NewLogger(t).Sugar(), 0)
	bot.ReportOutcome(game.OutcomeDefeat)
	if want, have := game.OutcomeDefeat, bot.Outcome(); want != have {
		t.Errorf("want %s, have %s", want, have)
	}
}
