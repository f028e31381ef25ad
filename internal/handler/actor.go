package handler

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/bankcore/loan-engine/internal/domain"
)

// Identity headers set by the upstream auth gateway. The engine trusts
// them; authentication itself is not its job.
const (
	headerActorID   = "X-Actor-ID"
	headerActorRole = "X-Actor-Role"
)

func actorFromRequest(r *http.Request) (domain.Actor, error) {
	rawID := r.Header.Get(headerActorID)
	if rawID == "" {
		return domain.Actor{}, fmt.Errorf("missing %s header", headerActorID)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return domain.Actor{}, fmt.Errorf("invalid %s header: %w", headerActorID, err)
	}

	role := r.Header.Get(headerActorRole)
	switch role {
	case domain.RoleCustomer, domain.RolePersonnel, domain.RoleProvider:
	default:
		return domain.Actor{}, fmt.Errorf("unknown %s header %q", headerActorRole, role)
	}

	return domain.Actor{ID: id, Role: role}, nil
}

func hasRole(actor domain.Actor, roles ...string) bool {
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}
