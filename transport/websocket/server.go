package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/tictactoe-battleroom/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
	maxMessageSize = 512
)

type roomUseCase interface {
	Join(ctx context.Context, roomID, participantID, name string) (entity.Participant, error)
	Reconnect(ctx context.Context, roomID, participantID string) (entity.Participant, error)
	MakeTurn(ctx context.Context, roomID, participantID, payload string) error
	Leave(ctx context.Context, roomID, participantID string, consented bool) error
}

type Server struct {
	logger      *slog.Logger
	roomUseCase roomUseCase
	upgrader    websocket.Upgrader

	handlers map[string]func(ctx context.Context, client *client, message *Message) error

	clientsMutex sync.RWMutex
	clients      map[string]map[string]*client // roomID -> participantID
}

func New(logger *slog.Logger, roomUseCase roomUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		roomUseCase: roomUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[string]map[string]*client),
	}

	server.handlers = map[string]func(context.Context, *client, *Message) error{
		actionJoin:  server.handleJoin,
		actionPick:  server.handlePick,
		actionLeave: server.handleLeave,
	}

	return server
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.ServeWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// ServeWS - upgrades the connection and serves it until it closes.
func (that *Server) ServeWS(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeWS")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn)
	go c.writePump(that.logger)

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	that.handleMessages(ctx, c)
	that.handleDisconnect(ctx, c)
}

// handleMessages - processes messages from the client until it leaves or the socket fails.
func (that *Server) handleMessages(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleMessages")

	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("connection dropped", "error", err)
			}
			return
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			c.sendError(message.Action, errUnknownAction)
			continue
		}

		if err := handler(ctx, c, &message); err != nil {
			log.Debug("error processing message", "action", message.Action, "error", err)
			c.sendError(message.Action, err)
		}

		if c.left {
			return
		}
	}
}

// handleDisconnect - an unconsented drop opens the participant's grace window.
func (that *Server) handleDisconnect(ctx context.Context, c *client) {
	log := that.logger.With("method", "handleDisconnect")

	// a socket replaced by a resumed one no longer speaks for the seat
	current := that.unregister(c)

	if current && !c.left {
		if err := that.roomUseCase.Leave(ctx, c.roomID, c.participantID, false); err != nil {
			log.Info("failed to register disconnect", "roomID", c.roomID, "participantID", c.participantID, "error", err)
		}
	}

	c.close()

	log.Info("player disconnected", "roomID", c.roomID, "participantID", c.participantID, "consented", c.left)
}

// Sync - fans the room view out to every client of the room. It never blocks the room.
func (that *Server) Sync(_ context.Context, view entity.RoomView) error {
	that.clientsMutex.RLock()
	defer that.clientsMutex.RUnlock()

	for participantID, c := range that.clients[view.RoomID] {
		if !c.deliver(Message{Action: actionState, Payload: view}) {
			that.logger.Warn("client send buffer full, dropping state", "roomID", view.RoomID, "participantID", participantID)
		}
	}

	return nil
}

func (that *Server) register(c *client, roomID, participantID string) {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	c.roomID = roomID
	c.participantID = participantID

	if that.clients[roomID] == nil {
		that.clients[roomID] = make(map[string]*client)
	}
	that.clients[roomID][participantID] = c
}

// unregister - removes the client and reports whether it was still the seat's registered socket.
func (that *Server) unregister(c *client) bool {
	that.clientsMutex.Lock()
	defer that.clientsMutex.Unlock()

	if !c.joined() {
		return false
	}

	room := that.clients[c.roomID]
	current := room[c.participantID] == c
	if current {
		delete(room, c.participantID)
	}

	if len(room) == 0 {
		delete(that.clients, c.roomID)
	}

	return current
}
