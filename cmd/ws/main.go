package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Werneck0live/cadastro-leads/internal/broker"
	"github.com/Werneck0live/cadastro-leads/internal/config"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
	"github.com/Werneck0live/cadastro-leads/internal/ws"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type server struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	buffer   int
	log      *slog.Logger
}

func main() {
	config.LoadDotEnv()
	wscfg := config.LoadWSConfig()

	_ = config.InitLogger(wscfg.LogLevel)
	log := slog.Default().With("svc", "ws")
	hub := ws.NewHub(log)
	go hub.Run()

	// eventos da API chegam pela fila e são roteados por audiência
	cons, err := broker.NewConsumer(wscfg.RabbitURI, wscfg.RabbitQueue, wscfg.ConsumerTag, wscfg.ConsumerPrefetch)
	if err != nil {
		log.Error("rabbit_consumer_start_error", "err", err)
		os.Exit(1)
	}
	defer func() { _ = cons.Close() }()
	log.Info("rabbit_consumer_started", "queue", wscfg.RabbitQueue, "prefetch", wscfg.ConsumerPrefetch)

	go func() {
		for body := range cons.Bodies() {
			hub.Dispatch(body)
		}
		log.Warn("deliveries_channel_closed")
	}()

	s := &server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     ws.CheckOrigin(wscfg.AllowedOrigins),
		},
		buffer: wscfg.ClientBuffer,
		log:    log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": hub.Count()})
	})

	srv := &http.Server{
		Addr:              wscfg.Addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: wscfg.ReadHeaderTimeout,
	}

	go func() {
		log.Info("ws_listen", "addr", wscfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http_server_error", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), wscfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
	hub.Stop()

	log.Info("stopped")
}

// handleWS: ?role=admin recebe tudo, ?consultant={id} só os eventos daquele consultor.
func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	client, err := ws.NewClient(r.URL.Query(), s.buffer)
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("ws_upgrade_error", "err", err)
		return
	}

	s.hub.Register(client)
	s.log.Info("ws_client_connected", "id", client.ID, "admin", client.Admin, "consultant_id", client.ConsultantID)

	go s.writeLoop(conn, client)
	go s.readLoop(conn, client)
}

// writeLoop repassa ao socket o que o hub entregar e mantém o ping.
func (s *server) writeLoop(conn *websocket.Conn, client *ws.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub fechou o canal (cliente lento ou shutdown)
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop só detecta o fechamento do socket.
func (s *server) readLoop(conn *websocket.Conn, client *ws.Client) {
	defer func() {
		s.hub.Unregister(client)
		_ = conn.Close()
		s.log.Info("ws_client_disconnected", "id", client.ID)
	}()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

type statusRW struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRW) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Loga as requisições HTTP; upgrade de websocket passa sem embrulhar o ResponseWriter
// (o upgrader precisa do http.Hijacker original).
func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		srw := &statusRW{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		slog.Info("http_request",
			"method", r.Method, "path", r.URL.Path,
			"status", srw.status, "bytes", srw.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote", r.RemoteAddr,
		)
	})
}
