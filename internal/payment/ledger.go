package payment

import (
	"encoding/json"
	"fmt"
)

const (
	processedWebhooksKey = "stripe.processed_webhooks"

	// ledgerCapacity bounds the processed-webhook set. Oldest ids are evicted
	// first; an evicted id re-delivered later is still caught by the
	// existence oracle.
	ledgerCapacity = 1000
)

// Ledger is the idempotency ledger of already-handled webhook event ids,
// persisted as a JSON array in the settings store. It is best-effort across
// processes: two deliveries can race past IsProcessed, which is why the
// existence oracle stays the authoritative duplicate check.
type Ledger struct {
	kv KV
}

func NewLedger(kv KV) *Ledger {
	return &Ledger{kv: kv}
}

// IsProcessed reports whether eventID has already been handled.
func (l *Ledger) IsProcessed(eventID string) (bool, error) {
	ids, err := l.load()
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == eventID {
			return true, nil
		}
	}
	return false, nil
}

// MarkProcessed records eventID, evicting from the front when the set would
// exceed its capacity. The updated ledger is persisted before returning.
// Marking an already-recorded id is a no-op.
func (l *Ledger) MarkProcessed(eventID string) error {
	ids, err := l.load()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == eventID {
			return nil
		}
	}
	ids = append(ids, eventID)
	if len(ids) > ledgerCapacity {
		ids = ids[len(ids)-ledgerCapacity:]
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode processed-webhook ledger: %w", err)
	}
	return l.kv.Set(processedWebhooksKey, string(raw))
}

func (l *Ledger) load() ([]string, error) {
	raw, err := l.kv.Get(processedWebhooksKey, "[]")
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		// A corrupt ledger must not block webhook handling; start over and
		// let the oracle catch any duplicates.
		return nil, nil
	}
	return ids, nil
}
