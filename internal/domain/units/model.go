package units

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Unit is an organizational unit. Transactions and seminars belong to exactly
// one unit; users see the units they are members of.
type Unit struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Code      string    `gorm:"size:6;not null;uniqueIndex"`
	OwnerID   string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type UnitMember struct {
	UnitID   string    `gorm:"type:uuid;primaryKey"`
	UserID   string    `gorm:"primaryKey;index"`
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`

	Unit Unit `gorm:"foreignKey:UnitID;references:ID;constraint:OnDelete:CASCADE"`
}

// Membership is a unit as seen by one of its members.
type Membership struct {
	Unit Unit
	Role string
}
