package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Seller is a read-only projection of a campus vendor (stationery shop,
// canteen, xerox centre). Maintained by the onboarding service.
type Seller struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string         `gorm:"column:name;not null"`
	Email          *string        `gorm:"column:email"`
	Mobile         *string        `gorm:"column:mobile"`
	CampusLocation string         `gorm:"column:campus_location;not null"`
	Categories     pq.StringArray `gorm:"column:categories;type:text[]"`
	IsActive       bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
