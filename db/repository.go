package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CredentialRepository defines decoupled operations for token persistence.
type CredentialRepository interface {
	Get(ctx context.Context) (*Credential, error)
	Upsert(ctx context.Context, cred *Credential) error
	Clear(ctx context.Context) error
}

// PermissionRepository defines operations for the cached permission table.
type PermissionRepository interface {
	Replace(ctx context.Context, perms []Permission) error
	List(ctx context.Context) ([]Permission, error)
}

// gormCredentialRepo is a GORM-backed implementation of CredentialRepository.
// Use constructor NewCredentialRepository to obtain an instance.
type gormCredentialRepo struct{ db *gorm.DB }

// gormPermissionRepo is a GORM-backed implementation of PermissionRepository.
// Use constructor NewPermissionRepository to obtain an instance.
type gormPermissionRepo struct{ db *gorm.DB }

// NewCredentialRepository creates a CredentialRepository. Accepts *gorm.DB to avoid global access.
func NewCredentialRepository(db *gorm.DB) CredentialRepository { return &gormCredentialRepo{db: db} }

// NewPermissionRepository creates a PermissionRepository. Accepts *gorm.DB to avoid global access.
func NewPermissionRepository(db *gorm.DB) PermissionRepository { return &gormPermissionRepo{db: db} }

// Get returns nil, nil when no credential is stored.
func (r *gormCredentialRepo) Get(ctx context.Context) (*Credential, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var cred Credential
	err := r.db.WithContext(ctx).First(&cred, "id = ?", 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (r *gormCredentialRepo) Upsert(ctx context.Context, cred *Credential) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	cred.ID = 1
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "access_expiry", "refresh_expiry", "updated_at"}),
	}).Create(cred).Error
}

func (r *gormCredentialRepo) Clear(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Credential{}).Error
}

// Replace swaps the whole permission table for perms in one transaction.
func (r *gormPermissionRepo) Replace(ctx context.Context, perms []Permission) error {
	if r.db == nil {
		return fmt.Errorf("repository not initialized")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Permission{}).Error; err != nil {
			return err
		}
		if len(perms) == 0 {
			return nil
		}
		return tx.Create(&perms).Error
	})
}

func (r *gormPermissionRepo) List(ctx context.Context) ([]Permission, error) {
	if r.db == nil {
		return nil, fmt.Errorf("repository not initialized")
	}
	var perms []Permission
	if err := r.db.WithContext(ctx).Order("module_id").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}
