package reconcile

import (
	"fmt"
	"time"

	"github.com/rentledger/rentledger-backend/internal/domain/tenant"
	"github.com/rentledger/rentledger-backend/internal/infrastructure/storage"
)

// dedupSchemaVersion tags the persisted processing-record blob format.
const dedupSchemaVersion = 1

// processingRecord marks one message id as already posted.
type processingRecord struct {
	MessageID   string    `json:"message_id"`
	ProcessedAt time.Time `json:"processed_at"`
}

type dedupBlob struct {
	Records []processingRecord `json:"records"`
}

// DedupStore is the per-tenant set of already-processed message ids. It is
// the idempotency guard for ledger posting: a message id present here has
// already produced a posting, regardless of what its inbox labels say.
// Entries older than the retention TTL are dropped on Prune, which runs at
// the start of every reconciliation pass.
type DedupStore struct {
	kv  storage.KV
	ttl time.Duration
	now func() time.Time
}

// NewDedupStore creates a DedupStore with the given retention window.
func NewDedupStore(kv storage.KV, ttl time.Duration) *DedupStore {
	return &DedupStore{kv: kv, ttl: ttl, now: time.Now}
}

// WithClock replaces the store's clock, for tests.
func (d *DedupStore) WithClock(now func() time.Time) *DedupStore {
	d.now = now
	return d
}

func dedupKey(id tenant.ID) string {
	return fmt.Sprintf("dedup:%s", id)
}

func (d *DedupStore) load(id tenant.ID) ([]processingRecord, error) {
	key := dedupKey(id)
	blob, ok, err := d.kv.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load processing records for tenant %s: %w", id, err)
	}
	if !ok {
		return nil, nil
	}
	var decoded dedupBlob
	if err := storage.DecodeBlob(key, blob, dedupSchemaVersion, &decoded); err != nil {
		return nil, err
	}
	return decoded.Records, nil
}

func (d *DedupStore) save(id tenant.ID, records []processingRecord) error {
	blob, err := storage.EncodeBlob(dedupSchemaVersion, dedupBlob{Records: records})
	if err != nil {
		return fmt.Errorf("failed to encode processing records for tenant %s: %w", id, err)
	}
	return d.kv.Put(dedupKey(id), blob)
}

// Prune drops entries older than the retention TTL and persists the
// survivors. An entry exactly at the boundary is retained.
func (d *DedupStore) Prune(id tenant.ID) error {
	records, err := d.load(id)
	if err != nil {
		return err
	}
	cutoff := d.now().Add(-d.ttl)
	kept := records[:0]
	for _, rec := range records {
		if !rec.ProcessedAt.Before(cutoff) {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return d.save(id, kept)
}

// Seen reports whether the message id has already been processed.
func (d *DedupStore) Seen(id tenant.ID, messageID string) (bool, error) {
	records, err := d.load(id)
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if rec.MessageID == messageID {
			return true, nil
		}
	}
	return false, nil
}

// Record marks the message id as processed at the current time. Recording
// an already-present id is a no-op, preserving the original timestamp.
func (d *DedupStore) Record(id tenant.ID, messageID string) error {
	records, err := d.load(id)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.MessageID == messageID {
			return nil
		}
	}
	records = append(records, processingRecord{MessageID: messageID, ProcessedAt: d.now()})
	return d.save(id, records)
}

// Count returns the number of live entries, for run reporting.
func (d *DedupStore) Count(id tenant.ID) (int, error) {
	records, err := d.load(id)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
