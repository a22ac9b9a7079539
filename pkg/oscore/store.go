package oscore

import "context"

// ContextStore persists the two pieces of mutable state §3/§6 require a
// host to keep durable across restarts: the sender sequence number and
// the recipient's replay window. Neither is on the hot path of Seal/Open
// (§5) - the concurrency contract requires only that the write complete
// before ciphertext leaves the process, not that it be fast.
//
// Implementations are scoped to a single (sender_id, recipient_id) pair by
// construction; this module ships a Badger-backed and a GORM/SQL-backed
// implementation (internal/store), plus an in-memory one for tests.
type ContextStore interface {
	// Load returns the persisted sender sequence number and replay window
	// state, or the zero value of each if nothing has been saved yet.
	Load(ctx context.Context) (seq uint64, highest uint64, bitmap uint32, err error)
	// SaveSenderSeq durably persists seq before the caller proceeds to
	// Seal (§4.11 step 2). MUST complete (return) before ciphertext is
	// allowed to leave the process.
	SaveSenderSeq(ctx context.Context, seq uint64) error
	// SaveReplayWindow durably persists the replay window's (highest,
	// bitmap) pair, atomically with the decryption it followed (§5).
	SaveReplayWindow(ctx context.Context, highest uint64, bitmap uint32) error
}

// MemoryStore is a non-durable ContextStore, useful for tests and for
// deployments that accept losing sequence-number/replay-window state on
// restart (at the cost of the at-most-once guarantee §3 requires).
type MemoryStore struct {
	seq     uint64
	highest uint64
	bitmap  uint32
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load(_ context.Context) (uint64, uint64, uint32, error) {
	return m.seq, m.highest, m.bitmap, nil
}

func (m *MemoryStore) SaveSenderSeq(_ context.Context, seq uint64) error {
	m.seq = seq
	return nil
}

func (m *MemoryStore) SaveReplayWindow(_ context.Context, highest uint64, bitmap uint32) error {
	m.highest, m.bitmap = highest, bitmap
	return nil
}
