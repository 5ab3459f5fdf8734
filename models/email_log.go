package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmailLog is append-only: rows are written on successful delivery and
// never updated.
type EmailLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	DeadlineID uuid.UUID `gorm:"type:uuid;index;not null"`

	gorm.Model
}

func (l *EmailLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
