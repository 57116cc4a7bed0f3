package models

import "time"

// UserModel is a platform account. Role is mutated only by the moderation
// engine's user-request approval or by a direct admin update.
type UserModel struct {
	ID        string    `json:"_id"      gorm:"primaryKey;size:64"`
	Name      string    `json:"nombre"`
	Email     string    `json:"correo"   gorm:"uniqueIndex;not null"`
	Password  string    `json:"-"        gorm:"not null"`
	Phone     string    `json:"telefono"`
	Role      Role      `json:"rol"      gorm:"size:16;index"`
	CreatedAt time.Time `json:"fecha_creacion"`
}

func (UserModel) TableName() string { return "users" }
