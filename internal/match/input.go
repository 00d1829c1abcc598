package match

import (
	"sort"
	"time"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/metrics"
)

// Keys is the held-key bitfield a client reports each input frame.
type Keys struct {
	MoveUp    bool
	MoveDown  bool
	MoveLeft  bool
	MoveRight bool
	Sneak     bool
	Run       bool
	Reload    bool
	GrenadeToggle bool
	WeaponSlot int // 0 = no switch request this frame, else 1-based slot
}

// MouseState carries this frame's button state: a held bitfield plus the
// edges (press/release) that occurred since the previous frame.
type MouseState struct {
	Held     uint8
	Pressed  uint8
	Released uint8
}

// Input is one client-reported input frame, accepted in-band on the
// player:input event.
type Input struct {
	Sequence  uint64
	Timestamp int64 // client-reported unix millis, advisory only
	Keys      Keys
	Aim       mapmodel.Vector2
	Mouse     MouseState
}

// InputQueue buffers accepted input frames for one player between physics
// ticks, enforcing the sequence/timestamp acceptance rules from the
// protocol: strict monotonic sequence with a bounded out-of-order
// tolerance, and a clock-skew bound against server time. The queue itself
// is a fixed-capacity ring; on overflow the oldest queued frame for this
// player is dropped, never the newest.
type InputQueue struct {
	cfg config.InputConfig

	buf      []Input
	capacity int

	haveLast bool
	lastSeq  uint64
}

const inputQueueCapacity = 32

// NewInputQueue builds a queue using the server's configured input
// tolerances.
func NewInputQueue(cfg config.InputConfig) *InputQueue {
	return &InputQueue{cfg: cfg, capacity: inputQueueCapacity}
}

// Offer validates and enqueues an input frame, normalizing its aim
// coordinate to game space. Returns false if the frame was rejected
// (silently dropped per §7 InvalidInput — no disconnect).
func (q *InputQueue) Offer(in Input, serverNow time.Time, field config.FieldConfig) bool {
	if q.haveLast && in.Sequence <= q.lastSeq {
		// Regression beyond the out-of-order tolerance is dropped; within
		// tolerance it is accepted (reordered delivery) but does not advance
		// the high-water mark.
		if q.lastSeq-in.Sequence > uint64(q.cfg.MaxSequenceRegression) {
			metrics.RecordInputDropped("sequence")
			return false
		}
	}

	skew := serverNow.UnixMilli() - in.Timestamp
	if skew < 0 {
		skew = -skew
	}
	if float64(skew) > q.cfg.MaxClockSkewSec*1000 {
		metrics.RecordInputDropped("skew")
		return false
	}

	in.Aim = normalizeAim(in.Aim, field)

	if !q.haveLast || in.Sequence > q.lastSeq {
		q.haveLast = true
		q.lastSeq = in.Sequence
	}

	if len(q.buf) >= q.capacity {
		q.buf = q.buf[1:] // drop oldest, never the newest
		metrics.RecordInputDropped("overflow")
	}
	q.buf = append(q.buf, in)
	metrics.RecordInputAccepted()
	return true
}

// Drain returns all queued frames sorted into ascending sequence order and
// empties the queue; the physics tick processes them oldest-to-newest.
// Frames can arrive out of insertion order within the tolerance window
// Offer accepts, so this sort is required, not just documentation.
func (q *InputQueue) Drain() []Input {
	if len(q.buf) == 0 {
		return nil
	}
	out := q.buf
	q.buf = nil
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// normalizeAim accepts either game-space (0..480,0..270) or screen-space
// (0..1920,0..1080) coordinates, linearly down-scaling the latter.
func normalizeAim(aim mapmodel.Vector2, field config.FieldConfig) mapmodel.Vector2 {
	if aim.X <= float32(field.Width) && aim.Y <= float32(field.Height) {
		return aim
	}
	const screenW, screenH = 1920, 1080
	return mapmodel.Vector2{
		X: aim.X / screenW * float32(field.Width),
		Y: aim.Y / screenH * float32(field.Height),
	}
}
