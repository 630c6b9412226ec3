package user

import "time"

// Profile caches what the identity provider reported about a user the last
// time they called the API. Email and Name are nil when never reported.
type Profile struct {
	UserID    string    `gorm:"primaryKey"`
	Email     *string   `gorm:"type:text"`
	Name      *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "user_profiles"
}
