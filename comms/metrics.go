package comms

import "sync/atomic"

// Metrics counts traffic on a session. The zero value is ready to use
// and a nil *Metrics ignores every update.
type Metrics struct {
	FramesSent       int64 // requests written to the peer
	FramesReceived   int64 // frames read from the peer
	MalformedFrames  int64 // frames the codec could not decode
	ErrorsSent       int64 // ERROR requests written to the peer
	RequestsRejected int64 // requests a validator refused
}

func (m *Metrics) IncSent() {
	if m != nil {
		atomic.AddInt64(&m.FramesSent, 1)
	}
}

func (m *Metrics) IncReceived() {
	if m != nil {
		atomic.AddInt64(&m.FramesReceived, 1)
	}
}

func (m *Metrics) IncMalformed() {
	if m != nil {
		atomic.AddInt64(&m.MalformedFrames, 1)
	}
}

func (m *Metrics) IncErrorsSent() {
	if m != nil {
		atomic.AddInt64(&m.ErrorsSent, 1)
	}
}

func (m *Metrics) IncRejected() {
	if m != nil {
		atomic.AddInt64(&m.RequestsRejected, 1)
	}
}

// Snapshot returns a read-only copy for logging.
func (m *Metrics) Snapshot() map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return map[string]any{
		"frames_sent":       atomic.LoadInt64(&m.FramesSent),
		"frames_received":   atomic.LoadInt64(&m.FramesReceived),
		"malformed_frames":  atomic.LoadInt64(&m.MalformedFrames),
		"errors_sent":       atomic.LoadInt64(&m.ErrorsSent),
		"requests_rejected": atomic.LoadInt64(&m.RequestsRejected),
	}
}
