package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/clubworks/clubledger/internal/actorscope"
	"github.com/gin-gonic/gin"
)

// ActorScope reads the scope the gateway resolved for the caller and
// attaches it to the request context. Requests without scope headers are
// treated as internal callers.
func (s *Server) ActorScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := actorscope.Role(strings.ToLower(strings.TrimSpace(c.GetHeader("X-Actor-Role"))))

		switch role {
		case actorscope.RoleAdmin:
			ctx := actorscope.WithScope(c.Request.Context(), actorscope.Scope{Role: role})
			c.Request = c.Request.WithContext(ctx)

		case actorscope.RoleOrganization, actorscope.RoleClub:
			id, err := snowflake.ParseString(strings.TrimSpace(c.GetHeader("X-Actor-Id")))
			if err != nil || id == 0 {
				AbortWithError(c, newValidationError("X-Actor-Id", "invalid_actor_id", "invalid actor id"))
				return
			}
			ctx := actorscope.WithScope(c.Request.Context(), actorscope.Scope{Role: role, ID: id})
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}
