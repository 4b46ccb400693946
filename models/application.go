package models

import (
	"errors"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"portal/pkg/apperrors"
)

// ApplicationStatus is the review state of a submission. Any status may
// move to any other; staff overrides are part of the workflow.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	return s == ApplicationPending || s == ApplicationApproved || s == ApplicationRejected
}

// ApplicationForm is the structured payload of a submission. Field presence
// and types are a contract enforced at the ledger boundary, not an open map.
type ApplicationForm struct {
	// Personal information
	FullName       string `json:"fullName" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	PhoneNumber    string `json:"phoneNumber" validate:"required"`
	Address        string `json:"address" validate:"required"`
	Country        string `json:"country" validate:"required"`
	StateProvince  string `json:"stateProvince" validate:"required"`
	PassportNumber string `json:"passportNumber" validate:"required"`
	DateOfBirth    string `json:"dateOfBirth" validate:"required"`

	// Secondary education
	SecondarySchoolName  string `json:"secondarySchoolName" validate:"required"`
	SecondarySchoolGrade string `json:"secondarySchoolGrade" validate:"required"`

	// Prior degrees (optional blocks)
	BachelorUniversityName string `json:"bachelorUniversityName,omitempty"`
	BachelorProgram        string `json:"bachelorProgram,omitempty"`
	BachelorGrade          string `json:"bachelorGrade,omitempty"`
	GraduateUniversityName string `json:"graduateUniversityName,omitempty"`
	GraduateProgram        string `json:"graduateProgram,omitempty"`
	GraduateGrade          string `json:"graduateGrade,omitempty"`

	// Target program
	CountryApplyingFor string `json:"countryApplyingFor" validate:"required"`
	FundingType        string `json:"fundingType" validate:"required"`
	ReferralSource     string `json:"referralSource" validate:"required"`
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	// report violations under the json field names the client submitted
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the form against the fixed schema and returns a
// ValidationError listing every violated field, or nil.
func (f ApplicationForm) Validate() error {
	var violations []apperrors.FieldViolation
	if err := formValidator.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			violations = append(violations, apperrors.FieldViolation{
				Field:  fe.Field(),
				Reason: reasonFor(fe),
			})
		}
	}
	if f.PhoneNumber != "" && digitCount(f.PhoneNumber) < 10 {
		violations = append(violations, apperrors.FieldViolation{
			Field:  "phoneNumber",
			Reason: "must contain at least 10 digits",
		})
	}
	if len(violations) == 0 {
		return nil
	}
	return apperrors.NewValidation(violations...)
}

func reasonFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Application is one applicant's submission for review. The owner is fixed
// for the application's lifetime.
type Application struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
	OwnerID   string            `gorm:"column:user_id;size:255;not null;index"`
	Owner     Account           `gorm:"foreignKey:OwnerID;references:ID"`
	Status    ApplicationStatus `gorm:"size:32;not null;default:pending"`
	FormData  ApplicationForm   `gorm:"type:jsonb;serializer:json;not null"`

	Documents  []Document  `gorm:"foreignKey:ApplicationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FeeRecords []FeeRecord `gorm:"foreignKey:ApplicationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
