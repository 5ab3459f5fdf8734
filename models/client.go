package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name string `gorm:"not null"`
	// ICE (Identifiant Commun de l'Entreprise) and IF (Identifiant Fiscal)
	ICE      string
	IFNumber string
	Email    string
	Phone    string
	Type     string `gorm:"default:'Other'"` // SARL, Auto-Entrepreneur, SAS, Other

	Deadlines []Deadline `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`

	gorm.Model
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
