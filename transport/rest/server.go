package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
)

type roomUseCase interface {
	CreateRoom(ctx context.Context) (string, error)
	GetRoom(ctx context.Context, roomID string) (*entity.RoomView, error)
	RoomCount() int
}

// NewHandler - routes the HTTP API.
func NewHandler(roomUseCase roomUseCase) http.Handler {
	rooms := NewRoomHandler(roomUseCase)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", NewPingHandler(roomUseCase).Ping)
	mux.HandleFunc("POST /rooms", rooms.CreateRoom)
	mux.HandleFunc("GET /rooms/{id}", rooms.GetRoom)

	return mux
}

func Start(ctx context.Context, port string, roomUseCase roomUseCase) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      NewHandler(roomUseCase),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
