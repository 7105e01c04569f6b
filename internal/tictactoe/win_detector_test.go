package tictactoe

import (
	"testing"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
	"github.com/stretchr/testify/assert"
)

const (
	e = entity.Empty
	a = entity.MarkA
	b = entity.MarkB
)

func TestDetectWin(t *testing.T) {
	t.Run("Each single line is reported with its id", func(t *testing.T) {
		for i, line := range WinLines {
			// Given: a board where only this line is complete for B
			var cells [entity.BoardSize]entity.Mark
			for _, cell := range line {
				cells[cell] = b
			}

			// When: detecting
			winner, lineID := DetectWin(entity.NewBoard(cells))

			// Then: B and the line's id are returned
			assert.Equal(t, 2, winner)
			assert.Equal(t, i+1, lineID)
		}
	})

	t.Run("Ongoing game", func(t *testing.T) {
		board := entity.NewBoard([entity.BoardSize]entity.Mark{a, b, a, e, b, e, a, e, e})

		winner, lineID := DetectWin(board)

		assert.Zero(t, winner)
		assert.Equal(t, LineNone, lineID)
	})

	t.Run("Full board without a line", func(t *testing.T) {
		board := entity.NewBoard([entity.BoardSize]entity.Mark{a, b, a, a, b, b, b, a, a})

		_, lineID := DetectWin(board)

		assert.Equal(t, LineNone, lineID)
	})

	t.Run("Diagonal outranks a row", func(t *testing.T) {
		// Given: the first diagonal and the top row are both complete
		board := entity.NewBoard([entity.BoardSize]entity.Mark{a, a, a, b, a, b, b, b, a})

		// When: detecting
		winner, lineID := DetectWin(board)

		// Then: the diagonal wins the tie
		assert.Equal(t, 1, winner)
		assert.Equal(t, 1, lineID)
	})

	t.Run("Row outranks a column", func(t *testing.T) {
		// Given: the top row and the left column are both complete
		board := entity.NewBoard([entity.BoardSize]entity.Mark{a, a, a, a, b, b, a, b, b})

		winner, lineID := DetectWin(board)

		assert.Equal(t, 1, winner)
		assert.Equal(t, 3, lineID)
	})

	t.Run("Second diagonal reports its owner", func(t *testing.T) {
		board := entity.NewBoard([entity.BoardSize]entity.Mark{a, a, b, e, b, e, b, a, e})

		winner, lineID := DetectWin(board)

		assert.Equal(t, 2, winner)
		assert.Equal(t, 2, lineID)
	})
}
