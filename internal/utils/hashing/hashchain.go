package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/velopay/ledger-core/internal/core/domain"
)

// GenesisHash is the previous-hash value of the first audit record.
var GenesisHash = strings.Repeat("0", 64)

// canonicalRecord fixes the field set and order hashed for an audit record.
// Struct (not map) marshalling keeps the serialization deterministic.
type canonicalRecord struct {
	AuditID       string   `json:"auditID"`
	EventType     string   `json:"eventType"`
	Severity      string   `json:"severity"`
	EntityType    string   `json:"entityType"`
	EntityID      string   `json:"entityID"`
	BeforeState   string   `json:"beforeState"`
	AfterState    string   `json:"afterState"`
	ChangedFields []string `json:"changedFields"`
	PerformedBy   string   `json:"performedBy"`
	Reference     string   `json:"reference"`
	RecordedAt    string   `json:"recordedAt"`
	PreviousHash  string   `json:"previousHash"`
}

// Canonicalize serializes the critical fields of an audit record in a fixed
// order, including the previous hash, so record N's hash is a deterministic
// function of record N's content and record N-1's hash.
func Canonicalize(e domain.AuditLogEntry) []byte {
	rec := canonicalRecord{
		AuditID:       e.AuditID,
		EventType:     string(e.EventType),
		Severity:      string(e.Severity),
		EntityType:    e.EntityType,
		EntityID:      e.EntityID,
		BeforeState:   string(e.BeforeState),
		AfterState:    string(e.AfterState),
		ChangedFields: e.ChangedFields,
		PerformedBy:   e.PerformedBy,
		Reference:     e.Reference,
		RecordedAt:    e.RecordedAt.UTC().Format(time.RFC3339Nano),
		PreviousHash:  e.PreviousHash,
	}
	// Marshalling a struct of strings cannot fail.
	raw, _ := json.Marshal(rec)
	return raw
}

// ComputeHash returns the hex-encoded SHA-256 of the canonical record content.
func ComputeHash(e domain.AuditLogEntry) string {
	sum := sha256.Sum256(Canonicalize(e))
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the hash from the stored content and compares it to the
// stored hash. A mismatch signals tampering.
func Verify(e domain.AuditLogEntry) bool {
	return ComputeHash(e) == e.Hash
}

// VerifyChain checks every record's own hash and its link to the previous
// record. Records must be in sequence order; the first record must link to
// the genesis hash. It returns the index of the first broken record, or -1.
func VerifyChain(records []domain.AuditLogEntry) int {
	return VerifyChainFrom(records, GenesisHash)
}

// VerifyChainFrom is VerifyChain anchored at an arbitrary previous hash, for
// verifying a window of the chain that does not start at the genesis record.
func VerifyChainFrom(records []domain.AuditLogEntry, anchor string) int {
	prev := anchor
	for i, rec := range records {
		if rec.PreviousHash != prev || !Verify(rec) {
			return i
		}
		prev = rec.Hash
	}
	return -1
}
