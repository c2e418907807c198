package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"crewsync.com/crewsync/internal/constants"
	model "crewsync.com/crewsync/internal/models"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Upsert(ctx context.Context, p *model.Profile) error {
	p.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Order("last_name asc, first_name asc").Find(&profiles).Error
	return profiles, err
}

// SetStatus is last-write-wins: no version guard, the newest write sticks.
func (r *ProfileRepository) SetStatus(ctx context.Context, userID string, status constants.PresenceStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProfileRepository) HasRole(ctx context.Context, userID string, role constants.Role) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&n).Error
	return n > 0, err
}
