package authz

import (
	"testing"

	"portal/models"
)

func caller(id string, role models.Role) Caller {
	return Caller{ID: id, Role: role, Authenticated: true}
}

func TestAnonymousIsDeniedEverything(t *testing.T) {
	actions := []Action{
		ApplicationCreate, ApplicationRead, ApplicationSetStatus,
		FeeRead, FeeUpdate, ReceiptUpload, AccountSetRole,
	}
	for _, a := range actions {
		d := Authorize(Caller{}, a, Resource{})
		if d.Allowed {
			t.Errorf("anonymous caller allowed %s", a)
		}
		if d.Reason != ReasonUnauthenticated {
			t.Errorf("anonymous denial for %s: reason = %q, want %q", a, d.Reason, ReasonUnauthenticated)
		}
	}
}

func TestApplicantOwnResources(t *testing.T) {
	me := caller("u1", models.RoleApplicant)
	mine := Resource{OwnerID: "u1"}
	theirs := Resource{OwnerID: "u2"}

	cases := []struct {
		name   string
		action Action
		res    Resource
		want   bool
	}{
		{"create own application", ApplicationCreate, mine, true},
		{"read own application", ApplicationRead, mine, true},
		{"read another's application", ApplicationRead, theirs, false},
		{"edit own pending application", ApplicationEdit, Resource{OwnerID: "u1", ApplicationPending: true}, true},
		{"edit own decided application", ApplicationEdit, Resource{OwnerID: "u1", ApplicationPending: false}, false},
		{"upload document to own", DocumentUpload, mine, true},
		{"upload document to another's", DocumentUpload, theirs, false},
		{"upload receipt to own", ReceiptUpload, mine, true},
		{"read own fees", FeeRead, mine, true},
		{"read another's fees", FeeRead, theirs, false},
		{"list all applications", ApplicationList, Resource{}, false},
		{"set application status", ApplicationSetStatus, mine, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Authorize(me, tc.action, tc.res)
			if d.Allowed != tc.want {
				t.Fatalf("Authorize(applicant, %s) = %v, want %v", tc.action, d.Allowed, tc.want)
			}
		})
	}
}

func TestApplicantNeverUpdatesFees(t *testing.T) {
	// even for their own application's fee the applicant gets forbidden
	me := caller("u1", models.RoleApplicant)
	d := Authorize(me, FeeUpdate, Resource{OwnerID: "u1"})
	if d.Allowed {
		t.Fatal("applicant allowed to update a fee record")
	}
	if d.Reason != ReasonForbidden {
		t.Fatalf("reason = %q, want %q", d.Reason, ReasonForbidden)
	}
}

func TestStaffScope(t *testing.T) {
	staff := caller("s1", models.RoleStaff)
	allowed := []Action{
		ApplicationRead, ApplicationList, ApplicationSetStatus,
		ApplicationDelete, ApplicationExport, FeeRead, FeeUpdate,
		ReceiptRead, DocumentRead, AccountList,
	}
	for _, a := range allowed {
		if d := Authorize(staff, a, Resource{OwnerID: "someone-else"}); !d.Allowed {
			t.Errorf("staff denied %s: %s", a, d.Reason)
		}
	}
	denied := []Action{AccountCreate, AccountSetRole}
	for _, a := range denied {
		if d := Authorize(staff, a, Resource{TargetAccountID: "u9"}); d.Allowed {
			t.Errorf("staff allowed %s", a)
		}
	}
}

func TestSuperStaffRoleManagement(t *testing.T) {
	super := caller("ss1", models.RoleSuperStaff)

	if d := Authorize(super, AccountCreate, Resource{}); !d.Allowed {
		t.Fatalf("superStaff denied account creation: %s", d.Reason)
	}
	if d := Authorize(super, AccountSetRole, Resource{TargetAccountID: "u2", TargetAccountRole: models.RoleApplicant}); !d.Allowed {
		t.Fatalf("superStaff denied role change on applicant: %s", d.Reason)
	}

	// may not change their own role
	if d := Authorize(super, AccountSetRole, Resource{TargetAccountID: "ss1", TargetAccountRole: models.RoleSuperStaff}); d.Allowed {
		t.Fatal("superStaff allowed to change own role")
	}
	// may not alter another superStaff
	if d := Authorize(super, AccountSetRole, Resource{TargetAccountID: "ss2", TargetAccountRole: models.RoleSuperStaff}); d.Allowed {
		t.Fatal("superStaff allowed to change another superStaff's role")
	}
}

func TestSuperStaffKeepsStaffPowers(t *testing.T) {
	super := caller("ss1", models.RoleSuperStaff)
	for _, a := range []Action{ApplicationList, ApplicationSetStatus, FeeUpdate} {
		if d := Authorize(super, a, Resource{}); !d.Allowed {
			t.Errorf("superStaff denied staff action %s: %s", a, d.Reason)
		}
	}
}
