package payment

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerMarkAndCheck(t *testing.T) {
	kv := newFakeKV()
	l := NewLedger(kv)

	processed, err := l.IsProcessed("evt_1")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, l.MarkProcessed("evt_1"))

	processed, err = l.IsProcessed("evt_1")
	require.NoError(t, err)
	assert.True(t, processed)

	processed, err = l.IsProcessed("evt_2")
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestLedgerPersistsSynchronously(t *testing.T) {
	kv := newFakeKV()
	l := NewLedger(kv)

	require.NoError(t, l.MarkProcessed("evt_1"))

	// A fresh ledger over the same store must see the id.
	processed, err := NewLedger(kv).IsProcessed("evt_1")
	require.NoError(t, err)
	assert.True(t, processed)

	raw, err := kv.Get(processedWebhooksKey, "")
	require.NoError(t, err)
	assert.JSONEq(t, `["evt_1"]`, raw)
}

func TestLedgerDuplicateMarkIsNoop(t *testing.T) {
	kv := newFakeKV()
	l := NewLedger(kv)

	require.NoError(t, l.MarkProcessed("evt_1"))
	writes := kv.setCalls

	require.NoError(t, l.MarkProcessed("evt_1"))
	assert.Equal(t, writes, kv.setCalls, "re-marking a recorded id must not rewrite the ledger")

	raw, err := kv.Get(processedWebhooksKey, "")
	require.NoError(t, err)
	assert.JSONEq(t, `["evt_1"]`, raw)
}

func TestLedgerEvictsOldestAtCapacity(t *testing.T) {
	kv := newFakeKV()
	l := NewLedger(kv)

	for i := 0; i < ledgerCapacity+1; i++ {
		require.NoError(t, l.MarkProcessed(fmt.Sprintf("evt_%d", i)))
	}

	raw, err := kv.Get(processedWebhooksKey, "")
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(raw), &ids))

	assert.Len(t, ids, ledgerCapacity)
	assert.Equal(t, "evt_1", ids[0], "oldest id must be evicted first")
	assert.Equal(t, fmt.Sprintf("evt_%d", ledgerCapacity), ids[len(ids)-1])

	processed, err := l.IsProcessed("evt_0")
	require.NoError(t, err)
	assert.False(t, processed, "evicted id must no longer be reported as processed")
}

func TestLedgerToleratesCorruptValue(t *testing.T) {
	kv := newFakeKV()
	kv.put(processedWebhooksKey, "{not json")
	l := NewLedger(kv)

	processed, err := l.IsProcessed("evt_1")
	require.NoError(t, err)
	assert.False(t, processed)

	// Marking after corruption starts a fresh ledger.
	require.NoError(t, l.MarkProcessed("evt_1"))
	raw, err := kv.Get(processedWebhooksKey, "")
	require.NoError(t, err)
	assert.JSONEq(t, `["evt_1"]`, raw)
}
