package seminars

import "time"

// Seminar is a project a unit books revenue and costs against.
// Transactions link to it via the "seminar_id" metadata key.
type Seminar struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	UnitID    string     `gorm:"type:uuid;index;not null"`
	Name      string     `gorm:"not null"`
	StartsOn  *time.Time `gorm:"type:date"`
	Location  string     `gorm:"not null;default:''"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

type CreateInput struct {
	UnitID   string
	Name     string
	StartsOn *time.Time
	Location string
}

type UpdateInput struct {
	ID       string
	UnitID   string
	Name     string
	StartsOn *time.Time
	Location string
}
