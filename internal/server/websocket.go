package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/tankclient/internal/core/events"
	"github.com/zeusync/tankclient/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != s.config.Path {
		http.NotFound(w, r)
		return
	}
	if s.config.MaxClients > 0 && s.active.Load() >= int64(s.config.MaxClients) {
		http.Error(w, ErrMaxClientsReached.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	s.active.Add(1)
	s.served.Add(1)
	defer s.active.Add(-1)

	s.handleClient(r.Context(), conn)
}

// handleClient runs the bootstrap (Init out, name in) and then streams the
// recording. Inbound frames after the name are player commands; they are
// logged and counted, not simulated.
func (s *Server) handleClient(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	logger := s.logger.With(
		log.String("client_id", uuid.NewString()),
		log.String("remote_addr", conn.RemoteAddr().String()))

	boot, err := events.EncodeInit(s.boot)
	if err != nil {
		logger.Error("Failed to encode init record", log.Error(err))
		return
	}
	if err := s.write(conn, boot); err != nil {
		logger.Warn("Failed to send init record", log.Error(err))
		return
	}

	if s.config.HandshakeTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.config.HandshakeTimeout))
	}
	_, name, err := conn.ReadMessage()
	if err != nil {
		logger.Warn("Client did not send a name", log.Error(err))
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	role := "player"
	if len(name) == 0 {
		role = "observer"
	}
	logger = logger.With(log.String("name", string(name)), log.String("role", role))
	logger.Info("Client joined")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.readCommands(ctx, cancel, conn, logger)

	if err := s.stream(ctx, conn); err != nil {
		logger.Info("Stream ended early", log.Error(err))
		return
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replay finished")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	logger.Info("Stream finished")
}

func (s *Server) stream(ctx context.Context, conn *websocket.Conn) error {
	start := time.Now()
	for i := 0; i < s.replay.Total(); i++ {
		ev, _ := s.replay.At(i)

		if wait := time.Until(start.Add(s.delay(ev.T))); wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.write(conn, ev.Params); err != nil {
			return err
		}
		s.sent.Add(1)
	}
	return nil
}

func (s *Server) readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, logger log.Log) {
	defer cancel()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("Client read failed", log.Error(err))
			}
			return
		}
		s.commands.Add(1)
		logger.Debug("Command received", log.String("command", string(data)))
	}
}

// write is only called from the streaming goroutine.
func (s *Server) write(conn *websocket.Conn, data []byte) error {
	if s.config.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
