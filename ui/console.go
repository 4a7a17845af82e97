// Package ui implements game.Prompter for a person at a terminal and for
// an automated player.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/yookoala/submarines/board"
	"github.com/yookoala/submarines/game"
	"github.com/yookoala/submarines/protocol"
)

// Console prompts a person line by line.
type Console struct {
	in  *bufio.Scanner
	out io.Writer

	// lines is fed by a single reader goroutine and closed when the
	// input ends. err is set before the close.
	once  sync.Once
	lines chan string
	err   error
}

// NewConsole reads answers from in and writes prompts to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:    bufio.NewScanner(in),
		out:   out,
		lines: make(chan string),
	}
}

func (c *Console) read() {
	for c.in.Scan() {
		c.lines <- c.in.Text()
	}
	c.err = c.in.Err()
	close(c.lines)
}

// ask prints question and returns the next line. A cancelled ctx returns
// at once. The pending line, if any, goes to the next ask.
func (c *Console) ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(c.out, question)
	c.once.Do(func() { go c.read() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			if c.err != nil {
				return "", c.err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

// askInt asks until the answer is a number.
func (c *Console) askInt(ctx context.Context, question string) (int, error) {
	for {
		s, err := c.ask(ctx, question)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(c.out, "%q is not a number. Please try again.\n", s)
	}
}

// PromptPlacement implements game.Prompter.
func (c *Console) PromptPlacement(ctx context.Context, id board.ShipID) (p board.Placement, err error) {
	fmt.Fprintf(c.out, "Setting location for %s of size %d cells.\n", id, id.Size())
	for {
		s, err := c.ask(ctx, "Choose alignment Vertical/Horizontal: ")
		if err != nil {
			return p, err
		}
		if p.Alignment, err = board.ParseAlignment(s); err == nil {
			break
		}
		fmt.Fprintln(c.out, "Invalid alignment. Please try again.")
	}

	axisHelp := "row"
	if p.Alignment == board.Vertical {
		axisHelp = "column"
	}
	if p.Axis, err = c.askInt(ctx, fmt.Sprintf("Choose axis value (the %s): ", axisHelp)); err != nil {
		return
	}
	if p.Start, err = c.askInt(ctx, "Choose start point: "); err != nil {
		return
	}
	p.End, err = c.askInt(ctx, "Choose end point: ")
	return
}

// InvalidPlacement implements game.Prompter.
func (c *Console) InvalidPlacement(id board.ShipID, p board.Placement) {
	fmt.Fprintln(c.out, "Invalid submarine location. Please try again.")
}

// FleetPlaced implements game.Prompter.
func (c *Console) FleetPlaced(b *board.Board) {
	fmt.Fprintf(c.out, "Your fleet:\n%s\n", b)
	for _, ship := range b.Ships() {
		cells := make([]string, len(ship.Coordinates))
		for i, cell := range ship.Coordinates {
			cells[i] = protocol.Coord{X: cell[0], Y: cell[1]}.String()
		}
		fmt.Fprintf(c.out, "%s: %s\n", ship.ID, strings.Join(cells, " "))
	}
	fmt.Fprintln(c.out, "Waiting for the opponent...")
}

// PromptGuess implements game.Prompter.
func (c *Console) PromptGuess(ctx context.Context) (at protocol.Coord, err error) {
	if at.X, err = c.askInt(ctx, "Enter X coordinate for guess: "); err != nil {
		return
	}
	at.Y, err = c.askInt(ctx, "Enter Y coordinate for guess: ")
	return
}

// ReportAnswer implements game.Prompter.
func (c *Console) ReportAnswer(at protocol.Coord, statuses []protocol.AnswerStatus) {
	fmt.Fprintf(c.out, "Your guess at %s: %s\n", at, describeAnswer(statuses))
}

// ReportGuess implements game.Prompter.
func (c *Console) ReportGuess(at protocol.Coord, r board.Result) {
	switch {
	case r.CompletesSubmarine:
		fmt.Fprintf(c.out, "Opponent sank your ship at %s.\n", at)
	case r.IsHit:
		fmt.Fprintf(c.out, "Opponent hit %s.\n", at)
	default:
		fmt.Fprintf(c.out, "Opponent missed at %s.\n", at)
	}
}

// ReportPeerError implements game.Prompter.
func (c *Console) ReportPeerError(status protocol.ErrorStatus) {
	switch status {
	case protocol.StatusOutOfRange:
		fmt.Fprintf(c.out, "That guess is off the board. Coordinates go from 0 to %d.\n", board.BoardSize-1)
	default:
		fmt.Fprintf(c.out, "Opponent refused the guess (%s). Please try again.\n", status)
	}
}

// ReportOutcome implements game.Prompter.
func (c *Console) ReportOutcome(o game.Outcome) {
	switch o {
	case game.OutcomeVictory:
		fmt.Fprintln(c.out, "You Win! :)")
	case game.OutcomeDefeat:
		fmt.Fprintln(c.out, "You Lose! :(")
	case game.OutcomeOpponentDisconnected:
		fmt.Fprintln(c.out, "Connection with opponent was closed. If you wish to play another game re-run the program.")
	}
}

func describeAnswer(statuses []protocol.AnswerStatus) string {
	switch {
	case protocol.ContainsStatus(statuses, protocol.StatusVictory):
		return "hit, and the last ship went down"
	case protocol.ContainsStatus(statuses, protocol.StatusFullSubCorrect):
		return "hit and sunk"
	case protocol.ContainsStatus(statuses, protocol.StatusCorrect):
		return "hit"
	default:
		return "miss"
	}
}
