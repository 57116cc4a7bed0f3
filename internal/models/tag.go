package models

// TagModel is a content tag (id tNNN). Articles and pending articles store
// bare tag ids; listings resolve them back to full objects.
type TagModel struct {
	ID          string `json:"_id"         gorm:"primaryKey;size:64"`
	Name        string `json:"nombre"      gorm:"not null"`
	Description string `json:"descripcion"`
}

func (TagModel) TableName() string { return "tags" }
