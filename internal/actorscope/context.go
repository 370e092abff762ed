// Package actorscope carries the acting caller's assignment scope through
// request contexts. Identity and session management live outside this
// service; the gateway forwards the resolved scope.
package actorscope

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Role identifies who is acting on a request.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleOrganization Role = "organization"
	RoleClub         Role = "club"
)

// Scope is the acting caller's role plus the entity it acts for. ID is
// zero for admins.
type Scope struct {
	Role Role
	ID   snowflake.ID
}

type scopeKey struct{}

func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

func FromContext(ctx context.Context) (Scope, bool) {
	if ctx == nil {
		return Scope{}, false
	}
	scope, ok := ctx.Value(scopeKey{}).(Scope)
	return scope, ok
}
