package sqlstore

import (
	"context"
	"errors"

	"Campus_Portal/internal/model"

	"gorm.io/gorm"
)

type LostFoundRepository struct {
	DB *gorm.DB
}

func (r *LostFoundRepository) Create(ctx context.Context, rep *model.LostFoundReport) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rep).Error; err != nil {
			return err
		}
		return appendOutbox(tx, model.EventLostFoundCreated, rep.ID, map[string]any{
			"id":             rep.ID,
			"title":          rep.Title,
			"location_found": rep.LocationFound,
		})
	})
	return classify(err)
}

func (r *LostFoundRepository) List(ctx context.Context, limit, offset int) ([]model.LostFoundReport, error) {
	var list []model.LostFoundReport
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, classify(err)
	}
	return list, nil
}

// Resolve 找回即删除，只有发布者本人可以操作
func (r *LostFoundRepository) Resolve(ctx context.Context, id, reporterID string) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND reporter_id = ?", id, reporterID).Delete(&model.LostFoundReport{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&model.LostFoundReport{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrNotOwner
		}
		return appendOutbox(tx, model.EventLostFoundResolved, id, map[string]any{"id": id})
	})
	if errors.Is(err, ErrNotOwner) || errors.Is(err, ErrNotFound) {
		return err
	}
	return classify(err)
}
