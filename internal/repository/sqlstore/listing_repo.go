package sqlstore

import (
	"context"
	"errors"

	"Campus_Portal/internal/model"

	"gorm.io/gorm"
)

type ListingRepository struct {
	DB *gorm.DB
}

func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(l).Error; err != nil {
			return err
		}
		return appendOutbox(tx, model.EventListingCreated, l.ID, map[string]any{
			"id":            l.ID,
			"owner_id":      l.OwnerID,
			"product_title": l.ProductTitle,
			"price":         l.Price,
		})
	})
	return classify(err)
}

func (r *ListingRepository) List(ctx context.Context, limit, offset int) ([]model.Listing, error) {
	var list []model.Listing
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, classify(err)
	}
	return list, nil
}

// MarkSold 条件更新只会把 false 改成 true，已售再次标记返回 changed=false
func (r *ListingRepository) MarkSold(ctx context.Context, id, ownerID string) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Listing{}).
			Where("id = ? AND owner_id = ? AND is_sold = ?", id, ownerID, false).
			Update("is_sold", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var l model.Listing
			if err := tx.Select("id", "owner_id", "is_sold").Where("id = ?", id).First(&l).Error; err != nil {
				return err
			}
			if l.OwnerID != ownerID {
				return ErrNotOwner
			}
			return nil
		}
		changed = true
		return appendOutbox(tx, model.EventListingSold, id, map[string]any{"id": id})
	})
	if errors.Is(err, ErrNotOwner) {
		return false, err
	}
	return changed, classify(err)
}
