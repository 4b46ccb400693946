package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"portal/models"
	"portal/pkg/apperrors"
	"portal/pkg/authz"
)

// GetAccount loads an account by id.
func (l *Ledger) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var acc models.Account
	if err := l.db.WithContext(ctx).First(&acc, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "account")
	}
	return &acc, nil
}

// GetAccountByEmail loads an account by its unique email.
func (l *Ledger) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var acc models.Account
	if err := l.db.WithContext(ctx).First(&acc, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		return nil, notFoundOr(err, "account")
	}
	return &acc, nil
}

// RegisterAccount self-registers a directly-authenticated applicant
// account. Staff roles are never assigned here; only a superStaff can
// elevate via SetRole or provision via ProvisionAccount.
func (l *Ledger) RegisterAccount(ctx context.Context, email, name, password string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var violations []apperrors.FieldViolation
	if email == "" {
		violations = append(violations, apperrors.FieldViolation{Field: "email", Reason: "is required"})
	}
	if len(password) < 6 {
		violations = append(violations, apperrors.FieldViolation{Field: "password", Reason: "too short (min 6)"})
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidation(violations...)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	acc := models.Account{
		ID:           newAccountID(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
		Role:         models.RoleApplicant,
	}
	if err := l.db.WithContext(ctx).Create(&acc).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %s: %w", email, apperrors.ErrConflict)
		}
		return nil, err
	}
	return &acc, nil
}

// Authenticate checks email+password credentials. Accounts provisioned
// without a password cannot authenticate directly.
func (l *Ledger) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	acc, err := l.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Forbidden("invalid credentials")
	}
	if len(acc.PasswordHash) == 0 {
		return nil, apperrors.Forbidden("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return nil, apperrors.Forbidden("invalid credentials")
	}
	return acc, nil
}

// ProvisionAccount explicitly creates an account with a chosen role.
// SuperStaff only.
func (l *Ledger) ProvisionAccount(ctx context.Context, caller authz.Caller, email, name, password string, role models.Role) (*models.Account, error) {
	if err := gateErr(authz.Authorize(caller, authz.AccountCreate, authz.Resource{})); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	var violations []apperrors.FieldViolation
	if email == "" {
		violations = append(violations, apperrors.FieldViolation{Field: "email", Reason: "is required"})
	}
	if name == "" {
		violations = append(violations, apperrors.FieldViolation{Field: "name", Reason: "is required"})
	}
	if len(password) < 6 {
		violations = append(violations, apperrors.FieldViolation{Field: "password", Reason: "too short (min 6)"})
	}
	if !role.Valid() {
		violations = append(violations, apperrors.FieldViolation{Field: "role", Reason: "must be applicant, staff or superStaff"})
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidation(violations...)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	acc := models.Account{
		ID:           newAccountID(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := l.db.WithContext(ctx).Create(&acc).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %s: %w", email, apperrors.ErrConflict)
		}
		return nil, err
	}
	return &acc, nil
}

// SetRole changes an account's role. The gate rejects self-changes and
// changes to accounts that are already superStaff.
func (l *Ledger) SetRole(ctx context.Context, caller authz.Caller, accountID string, role models.Role) (*models.Account, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidation(apperrors.FieldViolation{Field: "role", Reason: "must be applicant, staff or superStaff"})
	}
	var target models.Account
	if err := l.db.WithContext(ctx).First(&target, "id = ?", accountID).Error; err != nil {
		return nil, notFoundOr(err, "account")
	}
	res := authz.Resource{TargetAccountID: target.ID, TargetAccountRole: target.Role}
	if err := gateErr(authz.Authorize(caller, authz.AccountSetRole, res)); err != nil {
		return nil, err
	}
	if err := l.db.WithContext(ctx).Model(&target).Update("role", role).Error; err != nil {
		return nil, err
	}
	target.Role = role
	return &target, nil
}

// ListAccounts returns every account, staff only.
func (l *Ledger) ListAccounts(ctx context.Context, caller authz.Caller) ([]models.Account, error) {
	if err := gateErr(authz.Authorize(caller, authz.AccountList, authz.Resource{})); err != nil {
		return nil, err
	}
	var accounts []models.Account
	if err := l.db.WithContext(ctx).Order("created_at asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// ensureAccount provisions an applicant account on first contact with an
// identity the store has never seen. Runs inside the caller's transaction.
func ensureAccount(tx *gorm.DB, id, email, name string) error {
	acc := models.Account{
		ID:          id,
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DisplayName: name,
		Role:        models.RoleApplicant,
	}
	return tx.Where("id = ?", id).FirstOrCreate(&acc).Error
}

func newAccountID() string {
	return "user_" + uuid.NewString()
}
