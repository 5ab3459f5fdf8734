package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PeriodOneTime   = "One Time"
	PeriodMonthly   = "Mensuel"
	PeriodQuarterly = "Trimestriel"
	PeriodAnnual    = "Annuel"

	StatusPending = "Pending"
	StatusDone    = "Done"
)

type Deadline struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null"`

	Type    string    `gorm:"not null"` // TVA, CNSS, IR, IS, Other
	Period  string    `gorm:"not null"`
	DueDate time.Time `gorm:"type:date;index;not null"`
	Status  string    `gorm:"default:'Pending'"`

	// Per-channel send markers, meaningful only for the current due date.
	// Reset by the dispatcher at cycle start; untouched by rollover.
	EmailSent bool `gorm:"default:false"`
	SMSSent   bool `gorm:"default:false"`

	gorm.Model
}

func (d *Deadline) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
