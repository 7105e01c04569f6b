package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
)

// SubmitMove - applies actorOrder's mark on cell and advances the turn.
// A rejected move returns an error and leaves the session untouched.
func SubmitMove(session *entity.Session, actorOrder, cell int) error {
	if err := validateMove(session, actorOrder, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	if err := session.Board.PlaceMark(cell, entity.MarkOf(actorOrder)); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	session.Turn = entity.Opponent(session.Turn)
	updateGameStatus(session)

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(session *entity.Session, actorOrder, cell int) error {
	switch {
	case session.Phase == entity.PhaseFinished || !session.Outcome.IsNone():
		return apperror.ErrGameFinished
	case !session.Phase.InPlay():
		return apperror.ErrGameIsNotStarted
	}

	mark, err := session.Board.CellAt(cell)
	if err != nil {
		return err
	}

	if mark != entity.Empty {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, cell)
	}

	if actorOrder != session.Turn {
		return apperror.ErrNotYourTurn
	}

	return nil
}

// updateGameStatus - checks for a terminal position after a move.
// The full-board draw is noted first; a line completed by the same move overrides it.
func updateGameStatus(session *entity.Session) {
	drawn := session.Board.IsFull()

	if winner, line := DetectWin(session.Board); line != LineNone {
		session.Finish(entity.Outcome{Kind: entity.OutcomeWin, Winner: winner, Line: line})
		return
	}

	if drawn {
		session.Finish(entity.Outcome{Kind: entity.OutcomeDraw})
	}
}
