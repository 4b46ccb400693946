// Package authz is the single role-based decision function consumed by
// every mutating ledger operation. It has no side effects and never
// errors; denial is a value, not an exception.
package authz

import "portal/models"

// Action names one guarded operation.
type Action string

const (
	ApplicationCreate    Action = "application.create"
	ApplicationRead      Action = "application.read"
	ApplicationEdit      Action = "application.edit"
	ApplicationSetStatus Action = "application.setStatus"
	ApplicationList      Action = "application.list"
	ApplicationDelete    Action = "application.delete"
	ApplicationExport    Action = "application.export"
	DocumentUpload       Action = "document.upload"
	DocumentRead         Action = "document.read"
	FeeRead              Action = "fee.read"
	FeeUpdate            Action = "fee.update"
	ReceiptUpload        Action = "receipt.upload"
	ReceiptRead          Action = "receipt.read"
	AccountCreate        Action = "account.create"
	AccountSetRole       Action = "account.setRole"
	AccountList          Action = "account.list"
)

// Caller is the resolved identity of the requester. A zero Caller is
// anonymous.
type Caller struct {
	ID            string
	Role          models.Role
	Authenticated bool
}

// Resource describes the target of an action. Fields are filled only where
// the action needs them: OwnerID for anything hanging off an application,
// ApplicationPending for edits, the Target* pair for role changes.
type Resource struct {
	OwnerID            string
	ApplicationPending bool
	TargetAccountID    string
	TargetAccountRole  models.Role
}

// Decision is the gate's verdict. Reason is set only on denial.
type Decision struct {
	Allowed bool
	Reason  string
}

const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
)

func allow() Decision        { return Decision{Allowed: true} }
func deny(r string) Decision { return Decision{Reason: r} }

// Authorize decides whether caller may perform action on resource. Rules
// are evaluated in precedence order; anything not explicitly allowed is
// denied.
func Authorize(caller Caller, action Action, res Resource) Decision {
	if !caller.Authenticated || caller.ID == "" {
		return deny(ReasonUnauthenticated)
	}

	switch caller.Role {
	case models.RoleApplicant:
		return authorizeApplicant(caller, action, res)
	case models.RoleStaff:
		return authorizeStaff(action)
	case models.RoleSuperStaff:
		if d := authorizeStaff(action); d.Allowed {
			return d
		}
		return authorizeSuperStaff(caller, action, res)
	}
	return deny(ReasonForbidden)
}

// authorizeApplicant grants access only to the caller's own resources, and
// edits only while the application is still pending.
func authorizeApplicant(caller Caller, action Action, res Resource) Decision {
	owns := res.OwnerID != "" && res.OwnerID == caller.ID
	switch action {
	case ApplicationCreate:
		return allow()
	case ApplicationRead, DocumentUpload, DocumentRead, FeeRead, ReceiptUpload, ReceiptRead:
		if owns {
			return allow()
		}
	case ApplicationEdit:
		if owns && res.ApplicationPending {
			return allow()
		}
	}
	return deny(ReasonForbidden)
}

func authorizeStaff(action Action) Decision {
	switch action {
	case ApplicationRead, ApplicationList, ApplicationSetStatus,
		ApplicationDelete, ApplicationExport,
		FeeRead, FeeUpdate,
		ReceiptRead, DocumentRead,
		AccountList:
		return allow()
	}
	return deny(ReasonForbidden)
}

// authorizeSuperStaff covers the account-management actions on top of the
// staff set. A superStaff may not change their own role and may not alter
// an account that is already superStaff; this protects against privilege
// lockout when two superStaff collide.
func authorizeSuperStaff(caller Caller, action Action, res Resource) Decision {
	switch action {
	case AccountCreate:
		return allow()
	case AccountSetRole:
		if res.TargetAccountID == caller.ID {
			return deny(ReasonForbidden)
		}
		if res.TargetAccountRole == models.RoleSuperStaff {
			return deny(ReasonForbidden)
		}
		return allow()
	}
	return deny(ReasonForbidden)
}
