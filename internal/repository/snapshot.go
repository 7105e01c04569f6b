package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
)

// SnapshotRepository keeps the latest replica of every live room in redis
// and publishes each new replica on the room's channel.
type SnapshotRepository interface {
	CreateOrUpdate(ctx context.Context, view entity.RoomView) error
	GetByID(ctx context.Context, id string) (*entity.RoomView, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbSnapshot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotRepository(client *redis.Client, ttl time.Duration) SnapshotRepository {
	return &dbSnapshot{
		client: client,
		ttl:    ttl,
	}
}

func RoomKey(id string) string {
	return "room:" + id
}

// RoomChannel - returns the pub/sub channel replicas of the room are published on.
func RoomChannel(id string) string {
	return "room:" + id + ":state"
}

func (that *dbSnapshot) CreateOrUpdate(ctx context.Context, view entity.RoomView) error {
	viewJSON, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("could not marshal room view: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, RoomKey(view.RoomID), viewJSON, that.ttl)
		pipe.Publish(ctx, RoomChannel(view.RoomID), viewJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store room view: %w", err)
	}

	return nil
}

func (that *dbSnapshot) GetByID(ctx context.Context, id string) (*entity.RoomView, error) {
	response, err := that.client.Get(ctx, RoomKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room view by id: %w", err)
	}

	var view entity.RoomView
	if err = json.Unmarshal([]byte(response), &view); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room view: %w", err)
	}

	return &view, nil
}

func (that *dbSnapshot) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, RoomKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete room view by id: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrRoomNotFound
	}

	return nil
}
