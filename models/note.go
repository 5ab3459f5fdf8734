package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Note struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Content string `gorm:"type:text;not null"`

	gorm.Model
}

func (n *Note) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
