package units

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache keeps positive membership checks so that every unit-scoped request
// does not hit the store.
type Cache interface {
	GetMember(unitID, userID string) (*UnitMember, bool)
	SetMember(member *UnitMember)
	Clear()
}

type noopCache struct{}

func (noopCache) GetMember(string, string) (*UnitMember, bool) {
	return nil, false
}

func (noopCache) SetMember(*UnitMember) {}

func (noopCache) Clear() {}

type memberCache struct {
	items *gocache.Cache
}

// NewMemberCache returns a Cache whose entries expire after ttl. A ttl of zero
// or less disables caching.
func NewMemberCache(ttl time.Duration) Cache {
	if ttl <= 0 {
		return noopCache{}
	}
	return &memberCache{items: gocache.New(ttl, 2*ttl)}
}

func (c *memberCache) GetMember(unitID, userID string) (*UnitMember, bool) {
	value, ok := c.items.Get(memberKey(unitID, userID))
	if !ok {
		return nil, false
	}
	member := value.(UnitMember)
	return &member, true
}

func (c *memberCache) SetMember(member *UnitMember) {
	c.items.SetDefault(memberKey(member.UnitID, member.UserID), *member)
}

func (c *memberCache) Clear() {
	c.items.Flush()
}

func memberKey(unitID, userID string) string {
	return unitID + "/" + userID
}
