package sqlstore

import (
	"context"

	"Campus_Portal/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return classify(r.DB.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("password", hash)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRole 只给管理命令使用
func (r *UserRepository) UpdateRole(ctx context.Context, email, role string) error {
	res := r.DB.WithContext(ctx).Model(&model.User{}).Where("email = ?", email).Update("role", role)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) SessionCode(ctx context.Context, userID string) (string, error) {
	var p model.StudentProfile
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		return "", classify(err)
	}
	return p.SessionCode, nil
}

// CreateStudentProfile 代号冲突时返回 ErrDuplicate，由调用方重新生成
func (r *UserRepository) CreateStudentProfile(ctx context.Context, userID, sessionCode string) error {
	return classify(r.DB.WithContext(ctx).Create(&model.StudentProfile{
		UserID:      userID,
		SessionCode: sessionCode,
	}).Error)
}
