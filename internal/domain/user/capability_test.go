package user

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role Role
		can  []Capability
		not  []Capability
	}{
		{
			role: RoleUser,
			can:  []Capability{CapViewOwnOrders},
			not:  []Capability{CapViewAvailablePool, CapClaim, CapComplete, CapApprovePayout, CapFullVisibility},
		},
		{
			role: RoleBooster,
			can:  []Capability{CapViewOwnOrders, CapViewAvailablePool, CapClaim, CapComplete},
			not:  []Capability{CapApprovePayout, CapFullVisibility},
		},
		{
			role: RoleAdmin,
			can:  []Capability{CapViewOwnOrders, CapViewAvailablePool, CapClaim, CapComplete, CapApprovePayout, CapFullVisibility},
		},
		{
			role: Role("ghost"),
			not:  []Capability{CapViewOwnOrders, CapClaim},
		},
	}

	for _, tc := range tests {
		t.Run(string(tc.role), func(t *testing.T) {
			p := Principal{UserID: "u1", Role: tc.role}
			for _, c := range tc.can {
				require.True(t, p.Can(c), "expected %s to have %v", tc.role, c.Names())
			}
			for _, c := range tc.not {
				require.False(t, p.Can(c), "expected %s to lack %v", tc.role, c.Names())
			}
		})
	}
}

func TestCapabilityNames(t *testing.T) {
	require.Equal(t, []string{"viewOwnOrders"}, RoleUser.Capabilities().Names())
	require.Len(t, RoleAdmin.Capabilities().Names(), 6)
	require.False(t, RoleAdmin.Capabilities().Has(0))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Booster ")
	require.True(t, ok)
	require.Equal(t, RoleBooster, role)

	_, ok = ParseRole("root")
	require.False(t, ok)
}
