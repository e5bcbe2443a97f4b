package models

// StateEntry is one persisted key-value pair of durable client state
// (tokens, serialized user profile, remembered email).
type StateEntry struct {
	Key   string `gorm:"primaryKey;type:varchar(64)"`
	Value string `gorm:"type:text"`
}
