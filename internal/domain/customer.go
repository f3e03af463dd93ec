package domain

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:140;not null" json:"name"`
	Email     string    `gorm:"size:140;uniqueIndex" json:"email"`
	Phone     string    `gorm:"size:60" json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
