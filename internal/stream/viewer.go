package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/planetreboot/internal/core/observability/log"
)

// viewer is one connected renderer. Frames are queued on send and written
// by the viewer's own goroutine so a slow socket never blocks the tick.
type viewer struct {
	id          string
	conn        *websocket.Conn
	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	connectedAt time.Time
	dropped     atomic.Uint64
	// stale is set when a frame was dropped; the next frame is replaced by
	// the full snapshot.
	stale  atomic.Bool
	logger log.Log
}

func newViewer(conn *websocket.Conn, buffer int) *viewer {
	return &viewer{
		id:          uuid.NewString(),
		conn:        conn,
		send:        make(chan []byte, buffer),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
		logger:      log.NewNop(),
	}
}

// enqueue hands data to the writer. It reports false when the viewer is
// closed or its queue is full; full queues count as dropped frames.
func (v *viewer) enqueue(data []byte) bool {
	select {
	case <-v.done:
		return false
	default:
	}

	select {
	case v.send <- data:
		return true
	default:
		v.dropped.Add(1)
		return false
	}
}

// enqueueFrame queues a delta frame. A viewer that lost an earlier frame
// gets the output of snapshot instead, which already contains the delta.
func (v *viewer) enqueueFrame(delta []byte, snapshot func() []byte) bool {
	data := delta
	resync := v.stale.Load()
	if resync {
		if full := snapshot(); full != nil {
			data = full
		}
	}
	if !v.enqueue(data) {
		v.stale.Store(true)
		return false
	}
	if resync {
		v.stale.Store(false)
	}
	return true
}

func (v *viewer) close() {
	v.closeOnce.Do(func() {
		close(v.done)
		if v.conn != nil {
			_ = v.conn.Close()
		}
	})
}
