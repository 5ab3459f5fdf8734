package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageTemplate is a user-authored reminder message. DeadlineType and
// ClientID act as wildcards when nil; the newest matching template wins.
type MessageTemplate struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	EmailMessage *string `gorm:"type:text"`
	SMSMessage   *string `gorm:"type:text"`
	EmailSubject *string

	DeadlineType *string
	ClientID     *uuid.UUID `gorm:"type:uuid;index"`
	DaysBefore   int        `gorm:"default:1"`

	gorm.Model
}

func (t *MessageTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
