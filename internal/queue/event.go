// Package queue defines message payloads exchanged over the message broker.
package queue

// CultureValidatedEvent is published when an admin validates a culture.
// It carries enough information for downstream consumers to log or notify
// without querying the primary database.
type CultureValidatedEvent struct {
	CultureID   uint64 `json:"culture_id"`
	ParcelleID  uint64 `json:"parcelle_id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	ValidatedBy uint64 `json:"validated_by"`
	ValidatedAt string `json:"validated_at"`
}
