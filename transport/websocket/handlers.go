package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/pkg"
)

var (
	errUnknownAction = errors.New("unknown action")
	errAlreadyInRoom = errors.New("connection already joined a room")
	errNotInRoom     = errors.New("connection has not joined a room")
)

// handleJoin - joins a room, or resumes a seat when the payload carries a session token.
func (that *Server) handleJoin(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleJoin")

	if c.joined() {
		return errAlreadyInRoom
	}

	payload, err := decodeJoin(msg.Payload)
	if err != nil {
		return err
	}

	participantID := payload.Session
	if participantID == "" {
		participantID = pkg.GenerateNewSessionID()
	}

	// registered first so that the state sync caused by the join reaches this client;
	// it is held until "joined" has been queued, so the order is joined, then state
	c.hold()
	that.register(c, payload.Room, participantID)

	var participant entity.Participant
	if payload.Session != "" {
		participant, err = that.roomUseCase.Reconnect(ctx, payload.Room, participantID)
	} else {
		participant, err = that.roomUseCase.Join(ctx, payload.Room, participantID, payload.Name)
	}

	if err != nil {
		that.unregister(c)
		c.discard()
		c.roomID, c.participantID = "", ""

		return fmt.Errorf("failed to join room: %w", err)
	}

	c.release(&Message{Action: actionJoined, Payload: JoinedPayload{
		Room:    payload.Room,
		Session: participantID,
		Order:   participant.Order,
		Name:    participant.Name,
	}})

	log.Info("player joined", "roomID", payload.Room, "participantID", participantID, "order", participant.Order)

	return nil
}

func (that *Server) handlePick(ctx context.Context, c *client, msg *Message) error {
	if !c.joined() {
		return errNotInRoom
	}

	cell, err := decodeCell(msg.Payload)
	if err != nil {
		return err
	}

	if err = that.roomUseCase.MakeTurn(ctx, c.roomID, c.participantID, cell); err != nil {
		return fmt.Errorf("move rejected: %w", err)
	}

	return nil
}

// handleLeave - a consented leave; the connection is closed afterwards.
func (that *Server) handleLeave(ctx context.Context, c *client, _ *Message) error {
	if !c.joined() {
		return errNotInRoom
	}

	if err := that.roomUseCase.Leave(ctx, c.roomID, c.participantID, true); err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	c.left = true
	c.trySend(Message{Action: actionLeft})

	return nil
}
