package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"

	"portal/models"
	"portal/pkg/apperrors"
	"portal/pkg/authz"
)

// EnsureFeeRecords lazily materializes the four fee kinds for an
// application, once. The insert goes through ON CONFLICT DO NOTHING
// against the (application_id, fee_kind) unique index, so concurrent
// callers for the same application end up with exactly four rows.
func (l *Ledger) EnsureFeeRecords(ctx context.Context, appID string) ([]models.FeeRecord, error) {
	var count int64
	if err := l.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", appID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperrors.NotFound("application")
	}

	defaults := make([]models.FeeRecord, 0, len(models.FeeKinds))
	for _, kind := range models.FeeKinds {
		defaults = append(defaults, models.FeeRecord{
			ApplicationID: appID,
			FeeKind:       kind,
			Status:        models.FeeNotUpdated,
			Amount:        kind.DefaultAmount(),
			Currency:      "USD",
		})
	}
	err := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}, {Name: "fee_kind"}},
		DoNothing: true,
	}).Create(&defaults).Error
	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}

	var records []models.FeeRecord
	if err := l.db.WithContext(ctx).Where("application_id = ?", appID).Order("created_at asc").Find(&records).Error; err != nil {
		return nil, err
	}
	sortByKind(records)
	return records, nil
}

// sortByKind orders records applicationFee, admissionFee, visaFee, other.
func sortByKind(records []models.FeeRecord) {
	rank := make(map[models.FeeKind]int, len(models.FeeKinds))
	for i, k := range models.FeeKinds {
		rank[k] = i
	}
	for i := 1; i < len(records); i++ {
		for j := i; j > 0 && rank[records[j].FeeKind] < rank[records[j-1].FeeKind]; j-- {
			records[j], records[j-1] = records[j-1], records[j]
		}
	}
}

// ListFeesForApplication returns the application's fee records, creating
// them first if missing, so a fresh application always yields four rows.
// The owner or any staff may call it.
func (l *Ledger) ListFeesForApplication(ctx context.Context, caller authz.Caller, appID string) ([]models.FeeRecord, error) {
	var app models.Application
	if err := l.db.WithContext(ctx).First(&app, "id = ?", appID).Error; err != nil {
		return nil, notFoundOr(err, "application")
	}
	if err := gateErr(authz.Authorize(caller, authz.FeeRead, authz.Resource{OwnerID: app.OwnerID})); err != nil {
		return nil, err
	}
	return l.EnsureFeeRecords(ctx, appID)
}

// FeePatch is a partial update of a fee record; nil fields are untouched.
type FeePatch struct {
	Status         *models.FeeStatus
	Amount         *decimal.Decimal
	Currency       *string
	AccountDetails *string
	Notes          *string
}

// UpdateFee applies a staff patch and stamps who made it. Applicants are
// always denied regardless of ownership.
func (l *Ledger) UpdateFee(ctx context.Context, caller authz.Caller, feeID string, patch FeePatch) (*models.FeeRecord, error) {
	if err := gateErr(authz.Authorize(caller, authz.FeeUpdate, authz.Resource{})); err != nil {
		return nil, err
	}
	var violations []apperrors.FieldViolation
	if patch.Status != nil && !patch.Status.Valid() {
		violations = append(violations, apperrors.FieldViolation{Field: "status", Reason: "must be notUpdated, notApplicable, pending or paid"})
	}
	if patch.Amount != nil && patch.Amount.IsNegative() {
		violations = append(violations, apperrors.FieldViolation{Field: "amount", Reason: "must not be negative"})
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidation(violations...)
	}

	var fee models.FeeRecord
	if err := l.db.WithContext(ctx).First(&fee, "id = ?", feeID).Error; err != nil {
		return nil, notFoundOr(err, "fee record")
	}

	updates := map[string]any{
		"last_updated_by": caller.ID,
		"updated_at":      time.Now(),
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if patch.Amount != nil {
		updates["amount"] = *patch.Amount
	}
	if patch.Currency != nil {
		updates["currency"] = *patch.Currency
	}
	if patch.AccountDetails != nil {
		updates["account_details"] = *patch.AccountDetails
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if err := l.db.WithContext(ctx).Model(&fee).Updates(updates).Error; err != nil {
		return nil, err
	}
	if err := l.db.WithContext(ctx).First(&fee, "id = ?", feeID).Error; err != nil {
		return nil, notFoundOr(err, "fee record")
	}
	return &fee, nil
}

// feeWithApplication joins a fee record to its owning application for
// ownership checks on receipt operations.
func (l *Ledger) feeWithApplication(ctx context.Context, feeID string) (*models.FeeRecord, *models.Application, error) {
	var fee models.FeeRecord
	if err := l.db.WithContext(ctx).First(&fee, "id = ?", feeID).Error; err != nil {
		return nil, nil, notFoundOr(err, "fee record")
	}
	var app models.Application
	if err := l.db.WithContext(ctx).First(&app, "id = ?", fee.ApplicationID).Error; err != nil {
		return nil, nil, notFoundOr(err, "application")
	}
	return &fee, &app, nil
}
