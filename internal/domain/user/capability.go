package user

// Capability is one permission over orders. Roles map to capability sets so
// authorization never branches on role names.
type Capability uint8

const (
	CapViewOwnOrders Capability = 1 << iota
	CapViewAvailablePool
	CapClaim
	CapComplete
	CapApprovePayout
	CapFullVisibility
)

var roleCapabilities = map[Role]Capability{
	RoleUser:    CapViewOwnOrders,
	RoleBooster: CapViewOwnOrders | CapViewAvailablePool | CapClaim | CapComplete,
	RoleAdmin: CapViewOwnOrders | CapViewAvailablePool | CapClaim | CapComplete |
		CapApprovePayout | CapFullVisibility,
}

// Capabilities returns the capability set of r; unknown roles get none.
func (r Role) Capabilities() Capability {
	return roleCapabilities[r]
}

func (c Capability) Has(other Capability) bool {
	return other != 0 && c&other == other
}

func (c Capability) Names() []string {
	names := []string{}
	for _, item := range []struct {
		cap  Capability
		name string
	}{
		{CapViewOwnOrders, "viewOwnOrders"},
		{CapViewAvailablePool, "viewAvailablePool"},
		{CapClaim, "claim"},
		{CapComplete, "complete"},
		{CapApprovePayout, "approvePayout"},
		{CapFullVisibility, "fullVisibility"},
	} {
		if c.Has(item.cap) {
			names = append(names, item.name)
		}
	}
	return names
}
