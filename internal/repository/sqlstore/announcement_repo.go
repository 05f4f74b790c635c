package sqlstore

import (
	"context"
	"time"

	"Campus_Portal/internal/model"

	"gorm.io/gorm"
)

type AnnouncementRow struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	Link             string    `json:"link,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	AuthorName       string    `json:"author_name"`
	AuthorDepartment string    `json:"author_department"`
}

type AnnouncementRepository struct {
	DB *gorm.DB
}

func (r *AnnouncementRepository) Create(ctx context.Context, a *model.Announcement) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return err
		}
		return appendOutbox(tx, model.EventAnnouncementCreated, a.ID, map[string]any{
			"id":        a.ID,
			"author_id": a.AuthorID,
			"title":     a.Title,
		})
	})
	return classify(err)
}

func (r *AnnouncementRepository) List(ctx context.Context, limit, offset int) ([]AnnouncementRow, error) {
	var rows []AnnouncementRow
	err := r.DB.WithContext(ctx).
		Table("announcements AS a").
		Select("a.id, a.title, a.content, a.link, a.created_at, f.name AS author_name, f.department AS author_department").
		Joins("JOIN faculty_profiles f ON f.id = a.author_id").
		Order("a.created_at DESC, a.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}
