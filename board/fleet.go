package board

import (
	"fmt"
	"strings"
)

const (
	// BoardSize is the width and height of the square board.
	BoardSize = 10
)

// ShipID names a member of the fleet. The fleet is placed in ID order.
type ShipID int

const (
	ShipUndefined ShipID = iota
	ShipIDCarrier
	ShipIDBattleship
	ShipIDCruiser
	ShipIDSubmarine
	ShipIDDestroyer
)

// Fleet lists every ship a peer places, in placement order.
var Fleet = []ShipID{
	ShipIDCarrier,
	ShipIDBattleship,
	ShipIDCruiser,
	ShipIDSubmarine,
	ShipIDDestroyer,
}

// FleetLengths returns the lengths of the fleet in placement order: 5, 4, 3, 3, 2.
func FleetLengths() []int {
	lengths := make([]int, len(Fleet))
	for i, id := range Fleet {
		lengths[i] = id.Size()
	}
	return lengths
}

// MaxShipSize is the length of the longest ship in the fleet.
func MaxShipSize() (max int) {
	for _, l := range FleetLengths() {
		if l > max {
			max = l
		}
	}
	return
}

func (s ShipID) String() string {
	switch s {
	case ShipIDCarrier:
		return "Carrier"
	case ShipIDBattleship:
		return "Battleship"
	case ShipIDCruiser:
		return "Cruiser"
	case ShipIDSubmarine:
		return "Submarine"
	case ShipIDDestroyer:
		return "Destroyer"
	default:
		return "Unknown"
	}
}

func (s ShipID) IsValid() bool {
	return s >= ShipIDCarrier && s <= ShipIDDestroyer
}

func (s ShipID) Size() int {
	switch s {
	case ShipIDCarrier:
		return 5
	case ShipIDBattleship:
		return 4
	case ShipIDCruiser:
		return 3
	case ShipIDSubmarine:
		return 3
	case ShipIDDestroyer:
		return 2
	default:
		return 0
	}
}

// Alignment is the orientation of a placed ship.
type Alignment int

const (
	Horizontal Alignment = iota
	Vertical
)

func (a Alignment) String() string {
	switch a {
	case Horizontal:
		return "Horizontal"
	case Vertical:
		return "Vertical"
	default:
		return "Unknown"
	}
}

// ParseAlignment accepts "h", "horizontal", "v" or "vertical" in any case.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("invalid alignment: %q", s)
}

// Placement describes where a ship goes.
//
// A horizontal ship lies on row Axis and spans the columns Start..End.
// A vertical ship lies on column Axis and spans the rows Start..End.
// Both ends are inclusive and may be given in either order.
type Placement struct {
	Alignment Alignment
	Axis      int
	Start     int
	End       int
}

func (p Placement) String() string {
	return fmt.Sprintf("%s axis=%d from %d to %d", p.Alignment, p.Axis, p.Start, p.End)
}

// Len returns the number of cells the placement covers.
func (p Placement) Len() int {
	lo, hi := p.span()
	return hi - lo + 1
}

// Cells returns the (x, y) coordinates the placement covers.
func (p Placement) Cells() [][2]int {
	lo, hi := p.span()
	cells := make([][2]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		if p.Alignment == Horizontal {
			cells = append(cells, [2]int{p.Axis, i})
		} else {
			cells = append(cells, [2]int{i, p.Axis})
		}
	}
	return cells
}

func (p Placement) span() (lo, hi int) {
	lo, hi = p.Start, p.End
	if lo > hi {
		lo, hi = hi, lo
	}
	return
}

func inRange(v int) bool {
	return v >= 0 && v < BoardSize
}
