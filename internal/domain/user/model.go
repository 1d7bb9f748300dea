package user

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleBooster Role = "booster"
	RoleAdmin   Role = "admin"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, true
	case RoleBooster:
		return RoleBooster, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// User is a marketplace account. Customers and boosters share the table and
// differ only by role.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Balance      decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if n := len(strings.TrimSpace(u.Username)); n < 3 || n > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("email is invalid")
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	if _, ok := ParseRole(string(u.Role)); !ok {
		return fmt.Errorf("unknown role %q", u.Role)
	}
	return nil
}

func (u User) Principal() Principal {
	return Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

func (p Principal) Can(c Capability) bool {
	return p.Role.Capabilities().Has(c)
}

// IsZero reports whether the principal is anonymous.
func (p Principal) IsZero() bool {
	return p.UserID == ""
}
