package models

// SequenceModel backs the id allocator: one row per entity kind holding
// the highest numeric suffix handed out so far.
type SequenceModel struct {
	Kind  string `gorm:"primaryKey;size:32"`
	Value int64  `gorm:"not null"`
}

func (SequenceModel) TableName() string { return "sequences" }
