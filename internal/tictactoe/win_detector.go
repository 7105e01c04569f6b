package tictactoe

import "github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"

// LineNone means no line is complete.
const LineNone = 0

// WinLines are scanned in this order; a line's id is its position plus one.
// When several lines complete on the same move the earliest one is reported.
var WinLines = [8][3]int{
	{0, 4, 8}, // 1st diagonal
	{2, 4, 6}, // 2nd diagonal
	{0, 1, 2}, // top row
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6}, // left column
	{1, 4, 7},
	{2, 5, 8},
}

// DetectWin - returns the order owning the first complete line and that line's id,
// or (0, LineNone) when no line is complete.
func DetectWin(board entity.Board) (int, int) {
	cells := board.Cells()

	for i, line := range WinLines {
		a, b, c := cells[line[0]], cells[line[1]], cells[line[2]]
		if a != entity.Empty && a == b && b == c {
			return int(a), i + 1
		}
	}

	return 0, LineNone
}
