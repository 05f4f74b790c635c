package sqlstore

import (
	"context"
	"time"

	"Campus_Portal/internal/model"

	"gorm.io/gorm"
)

// ComplaintRow 投诉列表统一的扁平行结构，作者代号和票数都在这里拼好
type ComplaintRow struct {
	ID          string
	AuthorID    string
	Content     string
	IsAnonymous bool
	CreatedAt   time.Time
	SessionCode *string
	Upvotes     int64
}

type ComplaintRepository struct {
	DB *gorm.DB
}

// Create 插入投诉并写 outbox，频率限制由库里的触发器负责
func (r *ComplaintRepository) Create(ctx context.Context, c *model.Complaint) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		fields := map[string]any{
			"id":           c.ID,
			"is_anonymous": c.IsAnonymous,
		}
		// 匿名投诉的事件里同样不能出现作者
		if !c.IsAnonymous {
			fields["author_id"] = c.AuthorID
		}
		return appendOutbox(tx, model.EventComplaintCreated, c.ID, fields)
	})
	return classify(err)
}

func (r *ComplaintRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.Complaint{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, classify(err)
	}
	return n > 0, nil
}

func (r *ComplaintRepository) List(ctx context.Context, limit, offset int) ([]ComplaintRow, error) {
	var rows []ComplaintRow
	err := r.DB.WithContext(ctx).
		Table("complaint_box AS c").
		Select("c.id, c.author_id, c.content, c.is_anonymous, c.created_at, sp.session_code, COUNT(u.id) AS upvotes").
		Joins("LEFT JOIN student_profiles sp ON sp.user_id = c.author_id").
		Joins("LEFT JOIN complaint_upvotes u ON u.complaint_id = c.id").
		Group("c.id, c.author_id, c.content, c.is_anonymous, c.created_at, sp.session_code").
		Order("c.created_at DESC, c.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// UpvotedBy 返回调用者在给定投诉里点过赞的那部分 id
func (r *ComplaintRepository) UpvotedBy(ctx context.Context, userID string, complaintIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(complaintIDs))
	if userID == "" || len(complaintIDs) == 0 {
		return out, nil
	}
	var ids []string
	if err := r.DB.WithContext(ctx).Model(&model.Upvote{}).
		Where("user_id = ? AND complaint_id IN ?", userID, complaintIDs).
		Pluck("complaint_id", &ids).Error; err != nil {
		return nil, classify(err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

type UpvoteRepository struct {
	DB *gorm.DB
}

func (r *UpvoteRepository) Exists(ctx context.Context, complaintID, userID string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.Upvote{}).
		Where("complaint_id = ? AND user_id = ?", complaintID, userID).
		Count(&n).Error; err != nil {
		return false, classify(err)
	}
	return n > 0, nil
}

// Add 并发重复插入时返回 ErrDuplicate
func (r *UpvoteRepository) Add(ctx context.Context, complaintID, userID string) error {
	return classify(r.DB.WithContext(ctx).Create(&model.Upvote{
		ComplaintID: complaintID,
		UserID:      userID,
	}).Error)
}

func (r *UpvoteRepository) Remove(ctx context.Context, complaintID, userID string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("complaint_id = ? AND user_id = ?", complaintID, userID).
		Delete(&model.Upvote{})
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}
