package ledger

import (
	"context"
	"time"

	"gorm.io/gorm"

	"portal/models"
	"portal/pkg/apperrors"
	"portal/pkg/authz"
)

// Submit validates the form and creates a pending application owned by the
// caller. An identity the store has never seen is provisioned as an
// applicant account in the same transaction, so a first-time submitter
// needs no prior sign-up step.
func (l *Ledger) Submit(ctx context.Context, caller authz.Caller, email string, form models.ApplicationForm) (*models.Application, error) {
	if err := gateErr(authz.Authorize(caller, authz.ApplicationCreate, authz.Resource{OwnerID: caller.ID})); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	app := models.Application{
		OwnerID:  caller.ID,
		Status:   models.ApplicationPending,
		FormData: form,
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureAccount(tx, caller.ID, email, form.FullName); err != nil {
			return err
		}
		return tx.Create(&app).Error
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Get returns one application; the owner or any staff may read it.
func (l *Ledger) Get(ctx context.Context, caller authz.Caller, appID string) (*models.Application, error) {
	var app models.Application
	if err := l.db.WithContext(ctx).First(&app, "id = ?", appID).Error; err != nil {
		return nil, notFoundOr(err, "application")
	}
	if err := gateErr(authz.Authorize(caller, authz.ApplicationRead, authz.Resource{OwnerID: app.OwnerID})); err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByOwner returns the applications owned by ownerID. Applicants may
// only list their own; staff may list anyone's.
func (l *Ledger) ListByOwner(ctx context.Context, caller authz.Caller, ownerID string) ([]models.Application, error) {
	if err := gateErr(authz.Authorize(caller, authz.ApplicationRead, authz.Resource{OwnerID: ownerID})); err != nil {
		return nil, err
	}
	var apps []models.Application
	if err := l.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("created_at asc").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// ListAll returns every application ordered by creation time ascending for
// stable pagination. Staff only.
func (l *Ledger) ListAll(ctx context.Context, caller authz.Caller) ([]models.Application, error) {
	if err := gateErr(authz.Authorize(caller, authz.ApplicationList, authz.Resource{})); err != nil {
		return nil, err
	}
	var apps []models.Application
	if err := l.db.WithContext(ctx).Order("created_at asc").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateStatus sets the review status. Any status may move to any other;
// the workflow is a human override, not a state machine. Staff only.
func (l *Ledger) UpdateStatus(ctx context.Context, caller authz.Caller, appID string, status models.ApplicationStatus) (*models.Application, error) {
	if err := gateErr(authz.Authorize(caller, authz.ApplicationSetStatus, authz.Resource{})); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidation(apperrors.FieldViolation{Field: "status", Reason: "must be pending, approved or rejected"})
	}
	var app models.Application
	if err := l.db.WithContext(ctx).First(&app, "id = ?", appID).Error; err != nil {
		return nil, notFoundOr(err, "application")
	}
	if err := l.db.WithContext(ctx).Model(&app).Updates(map[string]any{
		"status":     status,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return nil, err
	}
	app.Status = status
	return &app, nil
}

// UpdateForm is the explicit edit path for a submission: only the owner,
// and only while the application is still pending.
func (l *Ledger) UpdateForm(ctx context.Context, caller authz.Caller, appID string, form models.ApplicationForm) (*models.Application, error) {
	var app models.Application
	if err := l.db.WithContext(ctx).First(&app, "id = ?", appID).Error; err != nil {
		return nil, notFoundOr(err, "application")
	}
	res := authz.Resource{OwnerID: app.OwnerID, ApplicationPending: app.Status == models.ApplicationPending}
	if err := gateErr(authz.Authorize(caller, authz.ApplicationEdit, res)); err != nil {
		return nil, err
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	if err := l.db.WithContext(ctx).Model(&app).Updates(map[string]any{
		"form_data":  form,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return nil, err
	}
	app.FormData = form
	return &app, nil
}

// Delete removes an application; documents, fee records and receipts go
// with it through the foreign-key cascade. Staff only.
func (l *Ledger) Delete(ctx context.Context, caller authz.Caller, appID string) error {
	if err := gateErr(authz.Authorize(caller, authz.ApplicationDelete, authz.Resource{})); err != nil {
		return err
	}
	res := l.db.WithContext(ctx).Delete(&models.Application{}, "id = ?", appID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("application")
	}
	return nil
}

// ApplicationExport bundles an application with its applicant and document
// metadata for offline review.
type ApplicationExport struct {
	Application models.Application `json:"application"`
	Applicant   models.Account     `json:"applicant"`
	Documents   []models.Document  `json:"documents"`
}

// Export assembles the bundle for one application. Staff only.
func (l *Ledger) Export(ctx context.Context, caller authz.Caller, appID string) (*ApplicationExport, error) {
	if err := gateErr(authz.Authorize(caller, authz.ApplicationExport, authz.Resource{})); err != nil {
		return nil, err
	}
	var app models.Application
	if err := l.db.WithContext(ctx).Preload("Owner").First(&app, "id = ?", appID).Error; err != nil {
		return nil, notFoundOr(err, "application")
	}
	var docs []models.Document
	if err := l.db.WithContext(ctx).Where("application_id = ?", appID).Order("created_at asc").Find(&docs).Error; err != nil {
		return nil, err
	}
	return &ApplicationExport{Application: app, Applicant: app.Owner, Documents: docs}, nil
}
