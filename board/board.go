package board

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"
)

// CellState is the state of one cell on a peer's own board.
type CellState int

const (
	CellStateWater CellState = iota
	CellStateShip
	CellStateSunk
)

func (s CellState) String() string {
	switch s {
	case CellStateWater:
		return "Water"
	case CellStateShip:
		return "Ship"
	case CellStateSunk:
		return "Sunk"
	default:
		return "Unknown"
	}
}

// ShipState records one placed ship.
type ShipState struct {
	ID          ShipID
	Coordinates [][2]int
}

// Result is the outcome of resolving an opponent's guess.
type Result struct {
	IsHit              bool
	IsFleetDestroyed   bool
	CompletesSubmarine bool
}

// Board is a peer's own grid. Cells are addressed (x, y) where x is the
// row and y the column. Only the owning game mutates it.
type Board struct {
	cells [BoardSize][BoardSize]CellState
	ships []ShipState
}

// New returns an empty board.
func New() *Board {
	return &Board{}
}

// ValidatePlacement reports whether a ship of the given length may be
// placed at p. It never mutates the board.
func (b *Board) ValidatePlacement(length int, p Placement) bool {
	if p.Alignment != Horizontal && p.Alignment != Vertical {
		return false
	}
	if !inRange(p.Axis) || !inRange(p.Start) || !inRange(p.End) {
		return false
	}
	if p.Len() != length {
		return false
	}
	for _, c := range p.Cells() {
		if b.cells[c[0]][c[1]] == CellStateShip {
			return false
		}
	}
	return true
}

// Place marks every cell of p as Ship and records it as one ship. The
// bounds and overlap checks are repeated so that an unvalidated
// placement can never write outside the grid.
func (b *Board) Place(id ShipID, p Placement) error {
	if !id.IsValid() {
		return fmt.Errorf("unknown ship %d", int(id))
	}
	if !b.ValidatePlacement(p.Len(), p) {
		return fmt.Errorf("invalid placement for %s: %s", id, p)
	}
	cells := p.Cells()
	for _, c := range cells {
		b.cells[c[0]][c[1]] = CellStateShip
	}
	b.ships = append(b.ships, ShipState{
		ID:          id,
		Coordinates: cells,
	})
	return nil
}

// ResolveGuess applies the opponent's guess at (x, y).
//
// Guessing water, an already sunk cell or a cell outside the grid is a
// miss and leaves the board untouched.
func (b *Board) ResolveGuess(x, y int) (r Result) {
	if !inRange(x) || !inRange(y) {
		return
	}
	if b.cells[x][y] != CellStateShip {
		return
	}

	b.cells[x][y] = CellStateSunk
	r.IsHit = true
	r.CompletesSubmarine = b.runSunk(x, y)
	r.IsFleetDestroyed = !b.HasShipCells()
	return
}

// runSunk walks the four arms out of (x, y), each at most one ship
// length short of the longest ship. An arm ends at the edge or at water.
// The run is sunk when no Ship cell is met on any arm. Ships touching
// the run count as part of it.
func (b *Board) runSunk(x, y int) bool {
	reach := MaxShipSize() - 1
arms:
	for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		for i := 1; i <= reach; i++ {
			cx, cy := x+d[0]*i, y+d[1]*i
			if !inRange(cx) || !inRange(cy) {
				continue arms
			}
			switch b.cells[cx][cy] {
			case CellStateShip:
				return false
			case CellStateWater:
				continue arms
			}
		}
	}
	return true
}

// HasShipCells reports whether any cell still holds an unsunk ship part.
func (b *Board) HasShipCells() bool {
	return b.ShipCells() > 0
}

// ShipCells counts the cells still in state Ship.
func (b *Board) ShipCells() (n int) {
	for x := range b.cells {
		for y := range b.cells[x] {
			if b.cells[x][y] == CellStateShip {
				n++
			}
		}
	}
	return
}

// Cell returns the state at (x, y). Out of range cells read as water.
func (b *Board) Cell(x, y int) CellState {
	if !inRange(x) || !inRange(y) {
		return CellStateWater
	}
	return b.cells[x][y]
}

// Ships returns a copy of the placed ships.
func (b *Board) Ships() []ShipState {
	out := make([]ShipState, len(b.ships))
	copy(out, b.ships)
	return out
}

func (b *Board) String() string {
	var buffer bytes.Buffer
	w := tabwriter.NewWriter(&buffer, 3, 0, 1, ' ', 0)

	fmt.Fprint(w, "\t")
	for y := 0; y < BoardSize; y++ {
		fmt.Fprint(w, strconv.Itoa(y)+"\t")
	}
	fmt.Fprint(w, "\n")

	for x := 0; x < BoardSize; x++ {
		fmt.Fprint(w, strconv.Itoa(x)+"\t")
		for y := 0; y < BoardSize; y++ {
			switch b.cells[x][y] {
			case CellStateShip:
				fmt.Fprint(w, "S\t")
			case CellStateSunk:
				fmt.Fprint(w, "X\t")
			default:
				fmt.Fprint(w, "~\t")
			}
		}
		fmt.Fprint(w, "\n")
	}
	w.Flush()
	return buffer.String()
}
