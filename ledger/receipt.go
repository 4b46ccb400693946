package ledger

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"portal/models"
	"portal/pkg/authz"
	"portal/pkg/thumb"
)

// UploadReceipt stores a proof-of-payment file against a fee record. The
// caller must own the application the fee belongs to. If the fee is still
// notUpdated, the first upload advances it to pending in the same
// transaction as the receipt row; any other status is left alone. A blob
// orphaned by a failed row insert is acceptable, but the caller still gets
// the error.
func (l *Ledger) UploadReceipt(ctx context.Context, caller authz.Caller, feeID string, file File) (*models.Receipt, error) {
	fee, app, err := l.feeWithApplication(ctx, feeID)
	if err != nil {
		return nil, err
	}
	if err := gateErr(authz.Authorize(caller, authz.ReceiptUpload, authz.Resource{OwnerID: app.OwnerID})); err != nil {
		return nil, err
	}

	url, err := l.putBlob(ctx, "receipts/"+fee.ID+"/"+file.Name, file.Data)
	if err != nil {
		return nil, err
	}
	thumbURL := l.maybeThumbnail(ctx, "receipts/"+fee.ID, file)

	receipt := models.Receipt{
		FeeRecordID:  fee.ID,
		Name:         file.Name,
		StorageURL:   url,
		ThumbURL:     thumbURL,
		MimeType:     file.MimeType,
		UploadedByID: caller.ID,
	}
	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&receipt).Error; err != nil {
			return err
		}
		// conditional single-statement advance; a concurrent upload or a
		// staff update racing this one cannot regress the status
		return tx.Model(&models.FeeRecord{}).
			Where("id = ? AND status = ?", fee.ID, models.FeeNotUpdated).
			Update("status", models.FeePending).Error
	})
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ListReceipts returns the receipts for a fee record, owner or staff.
func (l *Ledger) ListReceipts(ctx context.Context, caller authz.Caller, feeID string) ([]models.Receipt, error) {
	_, app, err := l.feeWithApplication(ctx, feeID)
	if err != nil {
		return nil, err
	}
	if err := gateErr(authz.Authorize(caller, authz.ReceiptRead, authz.Resource{OwnerID: app.OwnerID})); err != nil {
		return nil, err
	}
	var receipts []models.Receipt
	if err := l.db.WithContext(ctx).Where("payment_id = ?", feeID).Order("created_at asc").Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// maybeThumbnail renders and stores a preview for image uploads. Preview
// failures are logged and swallowed; the upload itself must not depend on
// cosmetic processing.
func (l *Ledger) maybeThumbnail(ctx context.Context, dir string, file File) string {
	if !thumb.Supported(file.MimeType) {
		return ""
	}
	small, err := thumb.Generate(file.Data)
	if err != nil {
		slog.Warn("thumbnail generation failed", "file", file.Name, "error", err)
		return ""
	}
	url, err := l.putBlob(ctx, dir+"/thumbs/"+file.Name+".jpg", small)
	if err != nil {
		slog.Warn("thumbnail store failed", "file", file.Name, "error", err)
		return ""
	}
	return url
}
