package memory

import (
	"time"

	"github.com/riskibarqy/rank-boost/internal/domain/passwordreset"
)

func tokenFixture(token string, expiresAt time.Time) passwordreset.Token {
	return passwordreset.Token{Token: token, UserID: "u-1", ExpiresAt: expiresAt, CreatedAt: expiresAt.Add(-passwordreset.TokenTTL)}
}
