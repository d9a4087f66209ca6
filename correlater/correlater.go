// Package correlater implements the correlation subsystem (C3): tying an
// outbound request's sequence number, and later its SMSC-assigned
// message_id, back to the caller's log_id and hook metadata so a
// deliver_sm delivery receipt can be matched to the submit_sm that
// caused it.
package correlater

import (
	"sync"
	"time"
)

// Entry is the context stored for one pending or completed request.
type Entry struct {
	LogID        string
	HookMetadata map[string]string
	expiresAt    time.Time
}

// Correlater maps sequence numbers and SMSC message-ids to Entry values,
// evicting them after a TTL. Implementations must be safe for concurrent
// use: the reader loop looks entries up and inserts message-id keys while
// the dispatcher loop inserts sequence-number keys.
type Correlater interface {
	Put(seq uint32, logID string, hookMetadata map[string]string)
	Get(seq uint32) (Entry, bool)
	PutMessageID(messageID, logID string, hookMetadata map[string]string)
	GetByMessageID(messageID string) (Entry, bool)
	// Sweep purges every expired entry. Callers run it periodically so
	// entries that are never looked up again don't linger indefinitely.
	Sweep()
}

// DefaultTTL is applied when a Map is constructed with ttl <= 0.
const DefaultTTL = 15 * time.Minute

// Map is the default in-memory Correlater. Expired entries are purged
// lazily on Get/GetByMessageID and periodically by Sweep.
type Map struct {
	mu      sync.Mutex
	ttl     time.Duration
	bySeq   map[uint32]Entry
	byMsgID map[string]Entry
	now     func() time.Time
}

// New creates a Map with the given TTL. ttl <= 0 uses DefaultTTL.
func New(ttl time.Duration) *Map {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Map{
		ttl:     ttl,
		bySeq:   make(map[uint32]Entry),
		byMsgID: make(map[string]Entry),
		now:     time.Now,
	}
}

// Put records a pending request keyed by its sequence number. Callers
// must call this before the request's bytes leave the socket (§3
// invariant iv).
func (m *Map) Put(seq uint32, logID string, hookMetadata map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bySeq[seq] = Entry{LogID: logID, HookMetadata: hookMetadata, expiresAt: m.now().Add(m.ttl)}
}

// Get looks up a response's request context by sequence number.
func (m *Map) Get(seq uint32) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.bySeq[seq]
	if !ok {
		return Entry{}, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.bySeq, seq)
		return Entry{}, false
	}
	return e, true
}

// PutMessageID re-keys a pending pair by the SMSC-assigned message_id,
// after a submit_sm_resp arrives, so a later delivery receipt carrying
// receipted_message_id can still be correlated.
func (m *Map) PutMessageID(messageID, logID string, hookMetadata map[string]string) {
	if messageID == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byMsgID[messageID] = Entry{LogID: logID, HookMetadata: hookMetadata, expiresAt: m.now().Add(m.ttl)}
}

// GetByMessageID looks up a deliver_sm's originating request context by
// the SMSC-assigned message_id carried in its receipted_message_id TLV.
func (m *Map) GetByMessageID(messageID string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byMsgID[messageID]
	if !ok {
		return Entry{}, false
	}
	if m.now().After(e.expiresAt) {
		delete(m.byMsgID, messageID)
		return Entry{}, false
	}
	return e, true
}

// Sweep purges every expired entry from both tables. Callers should run
// it periodically (e.g. from a ticker alongside the link-prober loop) so
// entries that are never looked up again don't linger until process
// exit.
func (m *Map) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.bySeq {
		if now.After(e.expiresAt) {
			delete(m.bySeq, k)
		}
	}
	for k, e := range m.byMsgID {
		if now.After(e.expiresAt) {
			delete(m.byMsgID, k)
		}
	}
}

// Len reports the number of entries held in each table, for metrics.
// Expired entries not yet purged by a lookup or Sweep are counted too.
func (m *Map) Len() (bySeq int, byMessageID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySeq), len(m.byMsgID)
}
