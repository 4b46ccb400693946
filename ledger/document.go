package ledger

import (
	"context"

	"portal/models"
	"portal/pkg/authz"
)

// UploadDocument attaches a supporting file to an application the caller
// owns. Unlike receipts there is no status side effect.
func (l *Ledger) UploadDocument(ctx context.Context, caller authz.Caller, appID string, file File) (*models.Document, error) {
	var app models.Application
	if err := l.db.WithContext(ctx).First(&app, "id = ?", appID).Error; err != nil {
		return nil, notFoundOr(err, "application")
	}
	if err := gateErr(authz.Authorize(caller, authz.DocumentUpload, authz.Resource{OwnerID: app.OwnerID})); err != nil {
		return nil, err
	}

	url, err := l.putBlob(ctx, "documents/"+app.ID+"/"+file.Name, file.Data)
	if err != nil {
		return nil, err
	}
	doc := models.Document{
		ApplicationID: app.ID,
		Name:          file.Name,
		StorageURL:    url,
		ThumbURL:      l.maybeThumbnail(ctx, "documents/"+app.ID, file),
		MimeType:      file.MimeType,
	}
	if err := l.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns the documents attached to an application, owner or
// staff.
func (l *Ledger) ListDocuments(ctx context.Context, caller authz.Caller, appID string) ([]models.Document, error) {
	var app models.Application
	if err := l.db.WithContext(ctx).First(&app, "id = ?", appID).Error; err != nil {
		return nil, notFoundOr(err, "application")
	}
	if err := gateErr(authz.Authorize(caller, authz.DocumentRead, authz.Resource{OwnerID: app.OwnerID})); err != nil {
		return nil, err
	}
	var docs []models.Document
	if err := l.db.WithContext(ctx).Where("application_id = ?", appID).Order("created_at asc").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// GetDocument returns one document row, owner or staff.
func (l *Ledger) GetDocument(ctx context.Context, caller authz.Caller, docID string) (*models.Document, error) {
	var doc models.Document
	if err := l.db.WithContext(ctx).First(&doc, "id = ?", docID).Error; err != nil {
		return nil, notFoundOr(err, "document")
	}
	var app models.Application
	if err := l.db.WithContext(ctx).First(&app, "id = ?", doc.ApplicationID).Error; err != nil {
		return nil, notFoundOr(err, "application")
	}
	if err := gateErr(authz.Authorize(caller, authz.DocumentRead, authz.Resource{OwnerID: app.OwnerID})); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DownloadDocument fetches the stored bytes for a document the caller may
// read.
func (l *Ledger) DownloadDocument(ctx context.Context, caller authz.Caller, docID string) (*models.Document, []byte, error) {
	doc, err := l.GetDocument(ctx, caller, docID)
	if err != nil {
		return nil, nil, err
	}
	data, err := l.getBlob(ctx, doc.StorageURL)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}
