package hashing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velopay/ledger-core/internal/core/domain"
	"github.com/velopay/ledger-core/internal/utils/hashing"
)

func record(auditID, previousHash string) domain.AuditLogEntry {
	return domain.AuditLogEntry{
		AuditID:      auditID,
		EventType:    domain.AuditBalanceUpdated,
		Severity:     domain.SeverityInfo,
		EntityType:   domain.EntityAccount,
		EntityID:     "acc-1",
		PerformedBy:  "tester",
		RecordedAt:   time.Date(2026, 8, 28, 12, 0, 0, 123456789, time.UTC),
		PreviousHash: previousHash,
	}
}

func chain(n int) []domain.AuditLogEntry {
	records := make([]domain.AuditLogEntry, n)
	prev := hashing.GenesisHash
	for i := range records {
		rec := record(string(rune('a'+i)), prev)
		rec.Sequence = int64(i + 1)
		rec.Hash = hashing.ComputeHash(rec)
		prev = rec.Hash
		records[i] = rec
	}
	return records
}

func TestComputeHash_Deterministic(t *testing.T) {
	rec := record("audit-1", hashing.GenesisHash)

	first := hashing.ComputeHash(rec)
	second := hashing.ComputeHash(rec)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestComputeHash_SensitiveToContent(t *testing.T) {
	rec := record("audit-1", hashing.GenesisHash)
	base := hashing.ComputeHash(rec)

	rec.PerformedBy = "someone-else"
	assert.NotEqual(t, base, hashing.ComputeHash(rec))
}

func TestComputeHash_SensitiveToPreviousHash(t *testing.T) {
	rec := record("audit-1", hashing.GenesisHash)
	base := hashing.ComputeHash(rec)

	rec.PreviousHash = hashing.ComputeHash(record("other", hashing.GenesisHash))
	assert.NotEqual(t, base, hashing.ComputeHash(rec))
}

func TestComputeHash_IgnoresSequence(t *testing.T) {
	rec := record("audit-1", hashing.GenesisHash)
	base := hashing.ComputeHash(rec)

	rec.Sequence = 99
	assert.Equal(t, base, hashing.ComputeHash(rec))
}

func TestVerify(t *testing.T) {
	rec := record("audit-1", hashing.GenesisHash)
	rec.Hash = hashing.ComputeHash(rec)

	assert.True(t, hashing.Verify(rec))

	rec.EntityID = "acc-2"
	assert.False(t, hashing.Verify(rec))
}

func TestVerifyChain_Valid(t *testing.T) {
	records := chain(5)

	assert.Equal(t, -1, hashing.VerifyChain(records))
}

func TestVerifyChain_Empty(t *testing.T) {
	assert.Equal(t, -1, hashing.VerifyChain(nil))
}

func TestVerifyChain_TamperedContent(t *testing.T) {
	records := chain(5)
	records[2].PerformedBy = "intruder"

	assert.Equal(t, 2, hashing.VerifyChain(records))
}

func TestVerifyChain_BrokenLink(t *testing.T) {
	records := chain(4)
	// Re-anchoring a record to the genesis hash keeps its own hash valid but
	// breaks the link from its predecessor.
	records[2].PreviousHash = hashing.GenesisHash
	records[2].Hash = hashing.ComputeHash(records[2])

	assert.Equal(t, 2, hashing.VerifyChain(records))
}

func TestVerifyChain_WrongAnchor(t *testing.T) {
	records := chain(3)

	assert.Equal(t, 0, hashing.VerifyChainFrom(records, "deadbeef"))
}

func TestVerifyChainFrom_MidChainWindow(t *testing.T) {
	records := chain(6)
	window := records[3:]
	anchor := records[2].Hash

	require.Equal(t, -1, hashing.VerifyChainFrom(window, anchor))
	assert.Equal(t, 0, hashing.VerifyChainFrom(window, records[1].Hash))
}
