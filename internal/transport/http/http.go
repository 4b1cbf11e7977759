// Package http implements the HTTP/WebSocket transport for hark.
//
// It lets a remote client speak to the assistant by posting recognized text,
// read back the transcript, and follow the conversation live over WebSocket.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/hark/docs" // serves /swagger/doc.json
	"github.com/nadzzz/hark/internal/capture"
	"github.com/nadzzz/hark/internal/message"
	"github.com/nadzzz/hark/internal/transcript"
	"github.com/nadzzz/hark/internal/transport"
)

const (
	maxBody      = 64 << 10
	writeTimeout = 10 * time.Second
	pingPeriod   = 30 * time.Second
)

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	port     int
	inbox    transport.Inbox // nil when capture is not fed over HTTP
	log      *transcript.Log
	upgrader websocket.Upgrader
	server   *http.Server
}

// New creates a new HTTP transport on the given port. inbox may be nil, in
// which case POST /utterance is refused.
func New(port int, inbox transport.Inbox, log *transcript.Log) *Transport {
	return &Transport{
		port:  port,
		inbox: inbox,
		log:   log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the transport's routes.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /utterance", t.handleUtterance)
	mux.HandleFunc("GET /transcript", t.handleTranscript)
	mux.HandleFunc("GET /ws", t.handleWS)

	// Swagger UI serves the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	return mux
}

// Listen starts the HTTP server.
func (t *Transport) Listen(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// handleUtterance queues recognized text for the dialogue loop.
//
// @Summary     Say something to the assistant
// @Description Queues already-recognized text. It is heard on the next listen,
// @Description exactly as if it had been spoken, so the wake phrase is still required while idle.
// @Tags        dialogue
// @Accept      json
// @Produce     json
// @Param       utterance  body      message.UtteranceRequest   true  "Recognized text"
// @Success     202        {object}  message.UtteranceResponse  "Queued"
// @Failure     400        {string}  string  "Invalid request body"
// @Failure     429        {string}  string  "Queue full"
// @Failure     503        {string}  string  "Remote capture not enabled"
// @Router      /utterance [post]
func (t *Transport) handleUtterance(w http.ResponseWriter, r *http.Request) {
	if t.inbox == nil {
		http.Error(w, "remote capture not enabled", http.StatusServiceUnavailable)
		return
	}

	var req message.UtteranceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	switch err := t.inbox.Push(req.Text); {
	case errors.Is(err, capture.ErrQueueFull):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(message.UtteranceResponse{Queued: true, Pending: t.inbox.Pending()})
}

// handleTranscript returns the newest transcript lines.
//
// @Summary     Read the transcript
// @Tags        dialogue
// @Produce     json
// @Param       limit  query     int  false  "Maximum number of lines (default all retained)"
// @Success     200    {array}   message.Entry
// @Failure     400    {string}  string  "Invalid limit"
// @Router      /transcript [get]
func (t *Transport) handleTranscript(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(t.log.Recent(limit))
}

// handleWS streams new transcript lines as JSON text frames.
//
// @Summary     Follow the transcript live
// @Description Upgrades to a WebSocket that receives one message.Entry per line.
// @Tags        dialogue
// @Success     101
// @Router      /ws [get]
func (t *Transport) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	entries, cancel := t.log.Subscribe(64)
	defer cancel()

	// Drain client frames so close and pong control messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	slog.Debug("transcript subscriber connected", "remote", r.RemoteAddr)
	for {
		select {
		case e, ok := <-entries:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-closed:
			slog.Debug("transcript subscriber gone", "remote", r.RemoteAddr)
			return
		case <-r.Context().Done():
			return
		}
	}
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}
