package models

import (
	"time"

	"comptapilot-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Username string    `gorm:"uniqueIndex;not null"`
	Email    string    `gorm:"uniqueIndex;not null"`
	Password string    `gorm:"not null"`
	Name     string    `gorm:"not null"`
	Phone    string

	// New registrations stay pending until an admin approves them.
	IsApproved bool `gorm:"default:false"`
	IsAdmin    bool `gorm:"default:false"`

	LastLogin *time.Time

	Clients          []Client          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	MessageTemplates []MessageTemplate `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Notes            []Note            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	gorm.Model
}

// Initialize UUID and hash password before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	hashed, err := utils.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return
}
