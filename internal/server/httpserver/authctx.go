package httpserver

import (
	"github.com/gin-gonic/gin"
)

const identityKey = "finledger.identity"

// Identity is the authenticated caller resolved by the auth middleware.
// It is the only source of truth for owner-scoped operations; user ids
// from the path or body are never trusted.
type Identity struct {
	UserID int64
	Email  string
}

// setIdentity stores the resolved identity in the request context.
func setIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// identityFrom fetches the identity placed by the auth middleware.
func identityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
