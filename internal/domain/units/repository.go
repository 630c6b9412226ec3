package units

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListUnitsByUser(ctx context.Context, userID string) ([]Membership, error)
	GetUnitByID(ctx context.Context, unitID string) (*Unit, error)
	GetUnitByCode(ctx context.Context, code string) (*Unit, error)
	// GetMember returns nil without error when the user is not a member.
	GetMember(ctx context.Context, unitID, userID string) (*UnitMember, error)
	ListMembers(ctx context.Context, unitID string) ([]UnitMember, error)
	CreateUnit(ctx context.Context, unit *Unit) error
	AddMember(ctx context.Context, member *UnitMember) error
	IsCodeTaken(ctx context.Context, code string) (bool, error)
}
