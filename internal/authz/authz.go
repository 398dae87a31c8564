package authz

import (
	"github.com/google/uuid"

	"github.com/NghaReformer/eventune-backend/pkg/enums"
)

// Action names an admin capability gated by role.
type Action string

const (
	ActionViewOrders    Action = "orders.view"
	ActionUpdateStatus  Action = "orders.update_status"
	ActionMarkDelivered Action = "orders.mark_delivered"
	ActionRefund        Action = "orders.refund"
)

// Actor identifies the staff member performing an admin command.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  enums.StaffRole
}

// Authorizer answers permission checks for admin commands.
type Authorizer interface {
	HasPermission(actor Actor, action Action) bool
}

var rolePermissions = map[enums.StaffRole]map[Action]bool{
	enums.StaffRoleAdmin: {
		ActionViewOrders:    true,
		ActionUpdateStatus:  true,
		ActionMarkDelivered: true,
		ActionRefund:        true,
	},
	enums.StaffRoleSupport: {
		ActionViewOrders:   true,
		ActionUpdateStatus: true,
	},
}

type roleAuthorizer struct{}

// NewRoleAuthorizer returns the static role-based permission table.
func NewRoleAuthorizer() Authorizer {
	return roleAuthorizer{}
}

func (roleAuthorizer) HasPermission(actor Actor, action Action) bool {
	perms, ok := rolePermissions[actor.Role]
	if !ok {
		return false
	}
	return perms[action]
}
