package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/planetreboot/internal/core/events"
	"github.com/zeusync/planetreboot/internal/core/events/bus"
	"github.com/zeusync/planetreboot/internal/core/observability/log"
	"github.com/zeusync/planetreboot/internal/core/planet"
	"github.com/zeusync/planetreboot/pkg/generic"
)

const shutdownTimeout = 5 * time.Second

// forwarded lists the bus events relayed to viewers.
var forwarded = []string{
	events.LitterPlaced,
	events.LitterRemoving,
	events.LitterReleased,
	events.PlanetTimeUp,
	events.PlanetModeChanged,
}

// CommandSink receives viewer inputs. *planet.Simulation satisfies it.
type CommandSink interface {
	Enqueue(cmd planet.Command) error
}

// Server streams simulation frames to websocket viewers at /ws.
//
// Broadcast is called from the tick goroutine. The server keeps the last
// known instance buffer of every archetype so a viewer that connects late
// receives the whole planet without asking the simulation for it.
type Server struct {
	config   Config
	sink     CommandSink
	logger   log.Log
	upgrader websocket.Upgrader

	viewers     sync.Map // map[string]*viewer
	viewerCount int64    // atomic

	cacheMu  sync.Mutex
	header   FrameMessage
	cache    map[int]ArchetypeMessage
	hasFrame bool

	buffers *generic.Pool[*bytes.Buffer]
	subs    []bus.Subscription

	running int32 // atomic bool
	closed  int32 // atomic bool
	workers sync.WaitGroup
}

func NewServer(config Config, sink CommandSink, logger log.Log) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}

	return &Server{
		config: config,
		sink:   sink,
		logger: logger.With(log.Component("stream")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		cache: make(map[int]ArchetypeMessage),
		buffers: generic.NewPool(func() *bytes.Buffer {
			return bytes.NewBuffer(make([]byte, 0, 16*1024))
		}, generic.WithReset((*bytes.Buffer).Reset), generic.WithWarm[*bytes.Buffer](2)),
	}, nil
}

// Handler serves the websocket endpoint and a health probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) ViewerCount() int {
	return int(atomic.LoadInt64(&s.viewerCount))
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts viewers on ln until ctx is cancelled, then disconnects them.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		_ = ln.Close()
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		_ = ln.Close()
		return ErrServerAlreadyRunning
	}
	defer atomic.StoreInt32(&s.running, 0)

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Stream server listening", log.String("addr", ln.Addr().String()))

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		<-serveErr
		s.Close()
		s.logger.Info("Stream server stopped")
		return err
	case err := <-serveErr:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.logger.Error("Stream server failed", log.Error(err))
		return err
	}
}

// Close disconnects every viewer, cancels bus subscriptions and waits for
// the viewer goroutines to exit.
func (s *Server) Close() {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return
	}
	for _, sub := range s.subs {
		_ = sub.Cancel()
	}
	s.viewers.Range(func(_, value any) bool {
		value.(*viewer).close()
		return true
	})
	s.workers.Wait()
}

// Watch relays litter and planet events from b to every viewer.
func (s *Server) Watch(b bus.EventBus) error {
	for _, typ := range forwarded {
		sub, err := b.Subscribe(typ, s.onEvent)
		if err != nil {
			return err
		}
		s.subs = append(s.subs, sub)
	}
	return nil
}

func (s *Server) onEvent(event bus.Event) error {
	if s.ViewerCount() == 0 {
		return nil
	}
	data, err := s.encode(EventMessage{Type: MessageEvent, Event: event.Type(), Data: event.Data()})
	if err != nil {
		return err
	}
	s.fanOut(data)
	return nil
}

// Broadcast merges f into the frame cache and sends it to every viewer.
func (s *Server) Broadcast(f planet.Frame) error {
	msg := NewFrameMessage(f)

	s.cacheMu.Lock()
	s.header = msg
	s.header.Archetypes = nil
	s.hasFrame = true
	for _, a := range msg.Archetypes {
		s.cache[a.Type] = a
	}
	s.cacheMu.Unlock()

	if s.ViewerCount() == 0 {
		return nil
	}
	data, err := s.encode(msg)
	if err != nil {
		return err
	}
	s.fanOutFrame(data)
	return nil
}

// Snapshot is the cached state of every archetype seen so far.
func (s *Server) Snapshot() (FrameMessage, bool) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if !s.hasFrame {
		return FrameMessage{}, false
	}
	msg := s.header
	msg.Archetypes = make([]ArchetypeMessage, 0, len(s.cache))
	for _, a := range s.cache {
		msg.Archetypes = append(msg.Archetypes, a)
	}
	sort.Slice(msg.Archetypes, func(i, j int) bool { return msg.Archetypes[i].Type < msg.Archetypes[j].Type })
	return msg, true
}

func (s *Server) fanOut(data []byte) {
	s.viewers.Range(func(_, value any) bool {
		v := value.(*viewer)
		if !v.enqueue(data) {
			v.logger.Debug("Dropped frame for slow viewer", log.Uint64("dropped", v.dropped.Load()))
		}
		return true
	})
}

// fanOutFrame sends a delta frame, resyncing viewers that dropped one. The
// snapshot is encoded at most once per frame.
func (s *Server) fanOutFrame(delta []byte) {
	var full []byte
	snapshot := func() []byte {
		if full != nil {
			return full
		}
		snap, ok := s.Snapshot()
		if !ok {
			return nil
		}
		data, err := s.encode(snap)
		if err != nil {
			s.logger.Warn("Failed to encode snapshot", log.Error(err))
			return nil
		}
		full = data
		return full
	}

	s.viewers.Range(func(_, value any) bool {
		v := value.(*viewer)
		if !v.enqueueFrame(delta, snapshot) {
			v.logger.Debug("Dropped frame for slow viewer", log.Uint64("dropped", v.dropped.Load()))
		}
		return true
	})
}

func (s *Server) addViewer(v *viewer) {
	s.viewers.Store(v.id, v)
	atomic.AddInt64(&s.viewerCount, 1)
}

func (s *Server) removeViewer(v *viewer) {
	s.viewers.Delete(v.id)
	atomic.AddInt64(&s.viewerCount, -1)
}

func (s *Server) encode(v any) ([]byte, error) {
	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "healthy",
		"viewers": s.ViewerCount(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if atomic.LoadInt32(&s.closed) == 1 {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	v := newViewer(conn, s.config.SendBuffer)
	v.logger = s.logger.WithContext(log.ContextWithFields(r.Context(), log.String("viewer_id", v.id)))
	s.workers.Add(1)
	defer s.workers.Done()

	s.addViewer(v)
	v.logger.Info("Viewer connected",
		log.String("remote_addr", conn.RemoteAddr().String()),
		log.Int64("total_viewers", atomic.LoadInt64(&s.viewerCount)))

	defer func() {
		s.removeViewer(v)
		v.close()
		v.logger.Info("Viewer disconnected",
			log.Uint64("dropped_frames", v.dropped.Load()),
			log.Duration("connected_for", time.Since(v.connectedAt)))
	}()

	if snap, ok := s.Snapshot(); ok {
		if data, err := s.encode(snap); err == nil {
			v.enqueue(data)
		}
	}

	s.workers.Add(1)
	go s.writeLoop(v)

	s.readLoop(v)
}

func (s *Server) writeLoop(v *viewer) {
	defer s.workers.Done()
	defer v.close()

	var ping <-chan time.Time
	if s.config.PingInterval > 0 {
		ticker := time.NewTicker(s.config.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case data := <-v.send:
			if s.config.WriteTimeout > 0 {
				_ = v.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				v.logger.Debug("Viewer write failed", log.Error(err))
				return
			}
		case <-ping:
			deadline := time.Now().Add(max(s.config.WriteTimeout, time.Second))
			if err := v.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				v.logger.Debug("Viewer ping failed", log.Error(err))
				return
			}
		case <-v.done:
			return
		}
	}
}

func (s *Server) readLoop(v *viewer) {
	v.conn.SetReadLimit(s.config.MaxMessageSize)
	if s.config.PingInterval > 0 {
		wait := 2 * s.config.PingInterval
		_ = v.conn.SetReadDeadline(time.Now().Add(wait))
		v.conn.SetPongHandler(func(string) error {
			return v.conn.SetReadDeadline(time.Now().Add(wait))
		})
	}

	for {
		_, data, err := v.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				v.logger.Debug("Viewer read failed", log.Error(err))
			}
			return
		}
		if err = s.dispatch(data); err != nil {
			v.logger.Debug("Rejected viewer command", log.Error(err))
			s.reply(v, err)
		}
	}
}

func (s *Server) dispatch(data []byte) error {
	var msg CommandMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	cmd, err := msg.Command()
	if err != nil {
		return err
	}
	if s.sink == nil {
		return nil
	}
	return s.sink.Enqueue(cmd)
}

func (s *Server) reply(v *viewer, cause error) {
	data, err := s.encode(ErrorMessage{Type: MessageError, Error: cause.Error()})
	if err != nil {
		return
	}
	v.enqueue(data)
}
