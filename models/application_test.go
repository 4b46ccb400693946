package models

import (
	"testing"

	"github.com/shopspring/decimal"

	"portal/pkg/apperrors"
)

func validForm() ApplicationForm {
	return ApplicationForm{
		FullName:             "Ada Lovelace",
		Email:                "ada@example.com",
		PhoneNumber:          "+1 (555) 012-3456",
		Address:              "12 Analytical Row",
		Country:              "United Kingdom",
		StateProvince:        "London",
		PassportNumber:       "P1234567",
		DateOfBirth:          "1990-12-10",
		SecondarySchoolName:  "St. James",
		SecondarySchoolGrade: "A",
		CountryApplyingFor:   "Hungary",
		FundingType:          "scholarship",
		ReferralSource:       "web",
	}
}

func TestValidFormPasses(t *testing.T) {
	if err := validForm().Validate(); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
}

func TestOptionalDegreeBlocksAreOptional(t *testing.T) {
	f := validForm()
	f.BachelorUniversityName = "UCL"
	f.BachelorProgram = "Mathematics"
	if err := f.Validate(); err != nil {
		t.Fatalf("form with partial degree block rejected: %v", err)
	}
}

func TestValidationListsEveryViolation(t *testing.T) {
	f := validForm()
	f.FullName = ""
	f.Email = "not-an-email"
	f.CountryApplyingFor = ""
	err := f.Validate()
	ve, ok := apperrors.IsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	got := map[string]bool{}
	for _, v := range ve.Violations {
		got[v.Field] = true
	}
	for _, field := range []string{"fullName", "email", "countryApplyingFor"} {
		if !got[field] {
			t.Errorf("missing violation for %s; got %v", field, ve.Violations)
		}
	}
	if len(ve.Violations) != 3 {
		t.Errorf("violations = %d, want 3: %v", len(ve.Violations), ve.Violations)
	}
}

func TestPhoneNeedsTenDigits(t *testing.T) {
	f := validForm()
	f.PhoneNumber = "555-0123" // 7 digits
	err := f.Validate()
	ve, ok := apperrors.IsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Violations) != 1 || ve.Violations[0].Field != "phoneNumber" {
		t.Fatalf("violations = %v, want single phoneNumber violation", ve.Violations)
	}

	f.PhoneNumber = "(555) 012-34567" // 10 digits with punctuation
	if err := f.Validate(); err != nil {
		t.Fatalf("10-digit phone rejected: %v", err)
	}
}

func TestStatusEnums(t *testing.T) {
	for _, s := range []ApplicationStatus{ApplicationPending, ApplicationApproved, ApplicationRejected} {
		if !s.Valid() {
			t.Errorf("%s reported invalid", s)
		}
	}
	if ApplicationStatus("archived").Valid() {
		t.Error("unknown application status reported valid")
	}
	for _, s := range []FeeStatus{FeeNotUpdated, FeeNotApplicable, FeePending, FeePaid} {
		if !s.Valid() {
			t.Errorf("%s reported invalid", s)
		}
	}
	if FeeStatus("refunded").Valid() {
		t.Error("unknown fee status reported valid")
	}
}

func TestFeeKindDefaults(t *testing.T) {
	cases := map[FeeKind]int64{
		FeeApplication: 100,
		FeeAdmission:   1000,
		FeeVisa:        200,
		FeeOther:       0,
	}
	for kind, want := range cases {
		if got := kind.DefaultAmount(); !got.Equal(decimal.NewFromInt(want)) {
			t.Errorf("%s default = %s, want %d", kind, got, want)
		}
	}
}
