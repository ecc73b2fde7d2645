package inkpad

import (
	"github.com/google/uuid"

	internalimage "github.com/gogpu/inkpad/internal/image"
)

// DefaultUndoCapacity is the number of snapshots kept by default.
const DefaultUndoCapacity = 20

// SnapshotReason records why a snapshot was taken.
type SnapshotReason int

const (
	ReasonInitial SnapshotReason = iota
	ReasonStrokeStart
	ReasonChunk
	ReasonCheckpoint
)

// String returns the reason name.
func (r SnapshotReason) String() string {
	switch r {
	case ReasonInitial:
		return "initial"
	case ReasonStrokeStart:
		return "stroke_start"
	case ReasonChunk:
		return "chunk"
	case ReasonCheckpoint:
		return "checkpoint"
	default:
		return "unknown"
	}
}

// Snapshot identifies one saved canvas state.
type Snapshot struct {
	ID     uuid.UUID
	Seq    uint64
	Reason SnapshotReason
}

type entry struct {
	Snapshot
	buf *internalimage.Buf
}

// History is a bounded stack of canvas snapshots. The newest snapshot
// mirrors the canvas as of its push; undo discards it and restores the one
// below. The oldest snapshot is never popped.
type History struct {
	capacity int
	entries  []entry
	pool     *internalimage.Pool
	seq      uint64
}

// NewHistory creates a history holding at most capacity snapshots. A
// capacity below 2 selects DefaultUndoCapacity.
func NewHistory(capacity int) *History {
	if capacity < 2 {
		capacity = DefaultUndoCapacity
	}
	return &History{
		capacity: capacity,
		pool:     internalimage.NewPool(2),
	}
}

// Cap returns the capacity.
func (h *History) Cap() int { return h.capacity }

// Len returns the number of snapshots.
func (h *History) Len() int { return len(h.entries) }

// Top returns the newest snapshot.
func (h *History) Top() (Snapshot, bool) {
	if len(h.entries) == 0 {
		return Snapshot{}, false
	}
	return h.entries[len(h.entries)-1].Snapshot, true
}

// Snapshots returns the snapshot identities, oldest first.
func (h *History) Snapshots() []Snapshot {
	out := make([]Snapshot, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Snapshot
	}
	return out
}

// Push copies canvas into a new snapshot, evicting the oldest when full.
func (h *History) Push(canvas *Pixmap, reason SnapshotReason) (Snapshot, error) {
	if canvas == nil {
		return Snapshot{}, ErrNilCanvas
	}
	buf := h.pool.Get(canvas.Width(), canvas.Height())
	if buf == nil {
		return Snapshot{}, ErrInvalidDimensions
	}
	copy(buf.Data(), canvas.Data())

	h.seq++
	s := Snapshot{ID: uuid.New(), Seq: h.seq, Reason: reason}
	h.entries = append(h.entries, entry{Snapshot: s, buf: buf})

	if len(h.entries) > h.capacity {
		h.pool.Put(h.entries[0].buf)
		h.entries[0] = entry{}
		h.entries = h.entries[1:]
	}
	return s, nil
}

// Undo pops up to steps snapshots, copying each new top onto canvas. It
// stops when one snapshot remains and returns the number undone.
func (h *History) Undo(canvas *Pixmap, steps int) int {
	if canvas == nil {
		return 0
	}
	n := 0
	for ; n < steps && len(h.entries) >= 2; n++ {
		last := len(h.entries) - 1
		h.pool.Put(h.entries[last].buf)
		h.entries[last] = entry{}
		h.entries = h.entries[:last]

		top := h.entries[last-1].buf
		copy(canvas.Data(), top.Data())
	}
	return n
}

// Clear releases all snapshots.
func (h *History) Clear() {
	for i := range h.entries {
		h.pool.Put(h.entries[i].buf)
		h.entries[i] = entry{}
	}
	h.entries = h.entries[:0]
}
