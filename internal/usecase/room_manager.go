package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/config"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/room"
)

type snapshotRepo interface {
	CreateOrUpdate(ctx context.Context, view entity.RoomView) error
	GetByID(ctx context.Context, id string) (*entity.RoomView, error)
	DeleteByID(ctx context.Context, id string) error
}

// RoomManager hosts independent sessions and routes transport events to them.
type RoomManager struct {
	ctx    context.Context
	logger *slog.Logger
	conf   config.Session

	snapshotRepo snapshotRepo

	mu      sync.RWMutex
	syncers []room.Syncer
	rooms   map[string]*room.Room
}

// NewRoomManager - ctx bounds the lifetime of every room the manager opens.
func NewRoomManager(ctx context.Context, logger *slog.Logger, conf config.Session, snapshotRepo snapshotRepo) *RoomManager {
	return &RoomManager{
		ctx:          ctx,
		logger:       logger.With("component", "room_manager"),
		conf:         conf,
		snapshotRepo: snapshotRepo,
		syncers:      []room.Syncer{room.SyncFunc(snapshotRepo.CreateOrUpdate)},
		rooms:        make(map[string]*room.Room),
	}
}

// AddSyncer - registers another state consumer for rooms opened afterwards.
func (that *RoomManager) AddSyncer(syncer room.Syncer) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.syncers = append(that.syncers, syncer)
}

// CreateRoom - opens a new empty session and returns its id.
func (that *RoomManager) CreateRoom(ctx context.Context) (string, error) {
	log := that.logger.With("method", "CreateRoom")

	roomID := pkg.GenerateRoomID()

	that.mu.Lock()
	syncers := append([]room.Syncer(nil), that.syncers...)
	instance := room.New(that.logger, roomID, room.Options{
		GraceWindow:  that.conf.GraceWindow,
		InboxSize:    that.conf.InboxSize,
		EmptyRoomTTL: that.conf.EmptyRoomTTL,
		OnDispose:    that.disposeRoom,
	}, syncers...)
	that.rooms[roomID] = instance
	that.mu.Unlock()

	go instance.Run(that.ctx)

	// the replica exists from the start so that REST readers see the waiting room
	view, err := instance.View(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read new room: %w", err)
	}

	if err = that.snapshotRepo.CreateOrUpdate(ctx, view); err != nil {
		log.Error("failed to store room view", "roomID", roomID, "error", err)
	}

	log.Info("room created", "roomID", roomID)

	return roomID, nil
}

func (that *RoomManager) Join(ctx context.Context, roomID, participantID, name string) (entity.Participant, error) {
	instance, err := that.getRoom(roomID)
	if err != nil {
		return entity.Participant{}, err
	}

	participant, err := instance.Join(ctx, participantID, name)
	if err != nil {
		return entity.Participant{}, fmt.Errorf("failed to join room %s: %w", roomID, err)
	}

	return participant, nil
}

func (that *RoomManager) Reconnect(ctx context.Context, roomID, participantID string) (entity.Participant, error) {
	instance, err := that.getRoom(roomID)
	if err != nil {
		return entity.Participant{}, err
	}

	participant, err := instance.Reconnect(ctx, participantID)
	if err != nil {
		return entity.Participant{}, fmt.Errorf("failed to reconnect to room %s: %w", roomID, err)
	}

	return participant, nil
}

func (that *RoomManager) MakeTurn(ctx context.Context, roomID, participantID, payload string) error {
	instance, err := that.getRoom(roomID)
	if err != nil {
		return err
	}

	if err = instance.Act(ctx, participantID, payload); err != nil {
		return fmt.Errorf("failed to make turn: %w", err)
	}

	return nil
}

func (that *RoomManager) Leave(ctx context.Context, roomID, participantID string, consented bool) error {
	instance, err := that.getRoom(roomID)
	if err != nil {
		return err
	}

	if err = instance.Leave(ctx, participantID, consented); err != nil {
		return fmt.Errorf("failed to leave room %s: %w", roomID, err)
	}

	return nil
}

// GetRoom - returns the live view of a hosted room, falling back to the stored replica.
func (that *RoomManager) GetRoom(ctx context.Context, roomID string) (*entity.RoomView, error) {
	instance, err := that.getRoom(roomID)
	if err == nil {
		view, viewErr := instance.View(ctx)
		if viewErr == nil {
			return &view, nil
		}

		if !errors.Is(viewErr, apperror.ErrRoomClosed) {
			return nil, fmt.Errorf("failed to read room %s: %w", roomID, viewErr)
		}
	}

	view, err := that.snapshotRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room view: %w", err)
	}

	return view, nil
}

// RoomCount returns the number of hosted rooms.
func (that *RoomManager) RoomCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

func (that *RoomManager) getRoom(roomID string) (*room.Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	instance, ok := that.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return instance, nil
}

// disposeRoom runs on the disposed room's goroutine.
func (that *RoomManager) disposeRoom(roomID string) {
	log := that.logger.With("method", "disposeRoom")

	if err := that.snapshotRepo.DeleteByID(that.ctx, roomID); err != nil && !errors.Is(err, apperror.ErrRoomNotFound) {
		log.Error("failed to delete room view", "roomID", roomID, "error", err)
	}

	that.mu.Lock()
	delete(that.rooms, roomID)
	that.mu.Unlock()

	log.Info("room disposed", "roomID", roomID)
}
