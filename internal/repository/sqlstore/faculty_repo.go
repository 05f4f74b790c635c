package sqlstore

import (
	"context"
	"strings"

	"Campus_Portal/internal/model"

	"gorm.io/gorm"
)

type FacultyRepository struct {
	DB *gorm.DB
}

func (r *FacultyRepository) Create(ctx context.Context, p *model.FacultyProfile) error {
	return classify(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *FacultyRepository) FindByUserID(ctx context.Context, userID string) (*model.FacultyProfile, error) {
	var p model.FacultyProfile
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return nil, classify(err)
	}
	return &p, nil
}

// List department 精确匹配，q 对姓名做不区分大小写的包含匹配
func (r *FacultyRepository) List(ctx context.Context, department, q string) ([]model.FacultyProfile, error) {
	tx := r.DB.WithContext(ctx).Model(&model.FacultyProfile{})
	if department != "" {
		tx = tx.Where("department = ?", department)
	}
	if q = strings.TrimSpace(q); q != "" {
		tx = tx.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	var list []model.FacultyProfile
	if err := tx.Order("name ASC").Find(&list).Error; err != nil {
		return nil, classify(err)
	}
	return list, nil
}
