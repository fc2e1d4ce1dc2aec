package settings

import "time"

// Setting is one row of the application's key/value configuration store.
// Feature toggles, the processed-webhook ledger and pending payment notices
// all live here; the payment flow has no storage of its own.
type Setting struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string
	UpdatedAt time.Time
}
