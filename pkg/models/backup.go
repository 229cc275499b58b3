package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ConfigBackup is a pre-change snapshot of a device's running configuration,
// keyed by content hash and tagged with the operation that triggered it.
type ConfigBackup struct {
	ID          string    `json:"backup_id"`
	DeviceID    string    `json:"device_id"`
	Config      string    `json:"config"`
	Hash        string    `json:"hash"`
	TriggeredBy string    `json:"triggered_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContentHash computes the sha256 hex digest used as the backup content key.
func ContentHash(config string) string {
	sum := sha256.Sum256([]byte(config))
	return hex.EncodeToString(sum[:])
}
