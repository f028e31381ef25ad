package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankcore/loan-engine/internal/domain"
)

func TestActorFromRequest(t *testing.T) {
	actorID := uuid.New()

	tests := []struct {
		name    string
		id      string
		role    string
		wantErr bool
	}{
		{name: "valid customer", id: actorID.String(), role: domain.RoleCustomer},
		{name: "valid personnel", id: actorID.String(), role: domain.RolePersonnel},
		{name: "valid provider", id: actorID.String(), role: domain.RoleProvider},
		{name: "missing id", id: "", role: domain.RoleCustomer, wantErr: true},
		{name: "malformed id", id: "not-a-uuid", role: domain.RoleCustomer, wantErr: true},
		{name: "unknown role", id: actorID.String(), role: "admin", wantErr: true},
		{name: "missing role", id: actorID.String(), role: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/v1/loans", nil)
			if tt.id != "" {
				r.Header.Set(headerActorID, tt.id)
			}
			if tt.role != "" {
				r.Header.Set(headerActorRole, tt.role)
			}

			actor, err := actorFromRequest(r)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, actorID, actor.ID)
			assert.Equal(t, tt.role, actor.Role)
		})
	}
}

func TestHasRole(t *testing.T) {
	actor := domain.Actor{ID: uuid.New(), Role: domain.RolePersonnel}

	assert.True(t, hasRole(actor, domain.RolePersonnel))
	assert.True(t, hasRole(actor, domain.RoleCustomer, domain.RolePersonnel))
	assert.False(t, hasRole(actor, domain.RoleCustomer))
	assert.False(t, hasRole(actor))
}
