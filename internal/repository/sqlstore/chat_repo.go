package sqlstore

import (
	"context"
	"time"

	"Campus_Portal/internal/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	DB *gorm.DB
}

func (r *ChatRepository) Create(ctx context.Context, m *model.ChatMessage) error {
	return classify(r.DB.WithContext(ctx).Create(m).Error)
}

// Recent 取最新的 limit 条未过期消息，按创建时间升序返回
func (r *ChatRepository) Recent(ctx context.Context, limit int, now time.Time) ([]model.ChatMessage, error) {
	var list []model.ChatMessage
	if err := r.DB.WithContext(ctx).
		Where("expires_at > ?", now.UTC()).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, classify(err)
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func (r *ChatRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&model.ChatMessage{})
	if res.Error != nil {
		return 0, classify(res.Error)
	}
	return res.RowsAffected, nil
}
