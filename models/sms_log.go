package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SMSLog is append-only, like EmailLog; it additionally records the
// normalized destination and the rendered message body.
type SMSLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null"`
	DeadlineID uuid.UUID `gorm:"type:uuid;index;not null"`

	Phone   string `gorm:"not null"`
	Message string `gorm:"type:text"`

	gorm.Model
}

func (l *SMSLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
