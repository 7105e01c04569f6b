package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
)

// BoardSize is the number of cells on the 3x3 grid.
const BoardSize = 9

// Mark is the content of a cell. A non-empty mark equals the order of the participant who placed it.
type Mark uint8

const (
	Empty Mark = iota
	MarkA
	MarkB
)

// MarkOf returns the mark placed by the participant with the given order.
func MarkOf(order int) Mark {
	return Mark(order) //nolint: gosec // orders are 1 or 2
}

// Board is the playing grid. Cells are append-only: a marked cell is never cleared.
type Board struct {
	cells [BoardSize]Mark
	moves int
}

// NewBoard returns a board built from the given cells. Used to restore or construct positions.
func NewBoard(cells [BoardSize]Mark) Board {
	board := Board{cells: cells}
	for _, cell := range cells {
		if cell != Empty {
			board.moves++
		}
	}

	return board
}

func (that *Board) CellAt(index int) (Mark, error) {
	if index < 0 || index >= BoardSize {
		return Empty, fmt.Errorf("%w: cell %d", apperror.ErrOutOfRange, index)
	}

	return that.cells[index], nil
}

func (that *Board) PlaceMark(index int, mark Mark) error {
	current, err := that.CellAt(index)
	if err != nil {
		return err
	}

	if mark != MarkA && mark != MarkB {
		return fmt.Errorf("%w: mark %d", apperror.ErrInvariantViolation, mark)
	}

	if current != Empty {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, index)
	}

	that.cells[index] = mark
	that.moves++

	return nil
}

func (that *Board) MovesPlayed() int {
	return that.moves
}

func (that *Board) IsFull() bool {
	return that.moves == BoardSize
}

// Cells returns a copy of the grid.
func (that *Board) Cells() [BoardSize]Mark {
	return that.cells
}

// Validate - checks that the move counter matches the marked cells.
func (that *Board) Validate() error {
	marked := 0
	for i, cell := range that.cells {
		switch cell {
		case Empty:
		case MarkA, MarkB:
			marked++
		default:
			return fmt.Errorf("%w: cell %d holds mark %d", apperror.ErrInvariantViolation, i, cell)
		}
	}

	if marked != that.moves {
		return fmt.Errorf("%w: %d marked cells, %d moves played", apperror.ErrInvariantViolation, marked, that.moves)
	}

	return nil
}
