// Package access answers capability questions for the HTTP layer. Roles are
// read from storage; handlers never compare role strings themselves.
package access

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

type Checker interface {
	CanManageBusiness(ctx context.Context, userID, businessID uuid.UUID) (bool, error)
	CanBook(ctx context.Context, userID uuid.UUID) (bool, error)
	IsSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

type GormChecker struct {
	db *gorm.DB
}

func NewGormChecker(db *gorm.DB) *GormChecker {
	return &GormChecker{db: db}
}

func (c *GormChecker) role(ctx context.Context, userID uuid.UUID) (string, error) {
	var u models.User
	err := c.db.WithContext(ctx).
		Select("id", "role").
		Where("id = ?", userID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// CanManageBusiness: the business owner, or a system administrator.
func (c *GormChecker) CanManageBusiness(ctx context.Context, userID, businessID uuid.UUID) (bool, error) {
	role, err := c.role(ctx, userID)
	if err != nil || role == "" {
		return false, err
	}
	if role == models.RoleSystemAdmin {
		return true, nil
	}

	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("id = ? AND owner_id = ?", businessID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CanBook: any existing account may book for itself.
func (c *GormChecker) CanBook(ctx context.Context, userID uuid.UUID) (bool, error) {
	role, err := c.role(ctx, userID)
	if err != nil {
		return false, err
	}
	return role != "", nil
}

func (c *GormChecker) IsSystemAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	role, err := c.role(ctx, userID)
	if err != nil {
		return false, err
	}
	return role == models.RoleSystemAdmin, nil
}
