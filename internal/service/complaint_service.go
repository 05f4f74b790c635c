package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"Campus_Portal/internal/metrics"
	"Campus_Portal/internal/model"
	"Campus_Portal/internal/repository/sqlstore"
)

const (
	AnonymousLabel      = "Anonymous"
	UnknownSessionLabel = "Unknown"
	maxComplaintLength  = 2000
)

// ComplaintView 对外输出的投诉，匿名时 author_id 整个字段不出现
type ComplaintView struct {
	ID                    string    `json:"id"`
	Complaint             string    `json:"complaint"`
	CreatedAt             time.Time `json:"created_at"`
	SessionCode           string    `json:"session_code"`
	AuthorID              *string   `json:"author_id,omitempty"`
	Upvotes               int64     `json:"upvotes"`
	CurrentUserHasUpvoted bool      `json:"current_user_has_upvoted"`
}

type UpvoteResult struct {
	Message string `json:"message"`
	Added   bool   `json:"added"`
}

type ComplaintService struct {
	complaints ComplaintStore
	upvotes    UpvoteStore
}

func NewComplaintService(complaints ComplaintStore, upvotes UpvoteStore) *ComplaintService {
	return &ComplaintService{complaints: complaints, upvotes: upvotes}
}

// Create 频率限制在存储层，这里只做角色和内容校验
func (s *ComplaintService) Create(ctx context.Context, p *model.Principal, content string, anonymous bool) error {
	if !p.IsStudent() {
		return ErrForbidden
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return invalid("field complaint is required")
	}
	if utf8.RuneCountInString(content) > maxComplaintLength {
		return invalid("field complaint is too long")
	}

	err := s.complaints.Create(ctx, &model.Complaint{
		AuthorID:    p.UserID,
		Content:     content,
		IsAnonymous: anonymous,
	})
	if sqlstore.IsRateLimited(err) {
		metrics.RateLimited.WithLabelValues("complaint").Inc()
	}
	return err
}

// List viewer 可以为 nil，此时所有 current_user_has_upvoted 都为 false
func (s *ComplaintService) List(ctx context.Context, viewer *model.Principal, page Page) ([]ComplaintView, error) {
	page = page.normalize()
	rows, err := s.complaints.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}

	voted := map[string]bool{}
	if viewer != nil && len(rows) > 0 {
		ids := make([]string, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		if voted, err = s.complaints.UpvotedBy(ctx, viewer.UserID, ids); err != nil {
			return nil, err
		}
	}

	out := make([]ComplaintView, 0, len(rows))
	for _, r := range rows {
		v := ProjectComplaint(r)
		v.CurrentUserHasUpvoted = voted[r.ID]
		out = append(out, v)
	}
	return out, nil
}

// ProjectComplaint 匿名行屏蔽作者信息，实名行带出代号，作者没有代号时显示 Unknown
func ProjectComplaint(r sqlstore.ComplaintRow) ComplaintView {
	v := ComplaintView{
		ID:        r.ID,
		Complaint: r.Content,
		CreatedAt: r.CreatedAt,
		Upvotes:   r.Upvotes,
	}
	if r.IsAnonymous {
		v.SessionCode = AnonymousLabel
		return v
	}
	v.SessionCode = UnknownSessionLabel
	if r.SessionCode != nil && *r.SessionCode != "" {
		v.SessionCode = *r.SessionCode
	}
	author := r.AuthorID
	v.AuthorID = &author
	return v
}

// ToggleUpvote 已投则撤销，未投则添加；并发重复添加按成功处理
func (s *ComplaintService) ToggleUpvote(ctx context.Context, p *model.Principal, complaintID string) (*UpvoteResult, error) {
	if !p.IsStudent() {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(complaintID) == "" {
		return nil, invalid("field complaintId is required")
	}

	ok, err := s.complaints.Exists(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrComplaintNotFound
	}

	voted, err := s.upvotes.Exists(ctx, complaintID, p.UserID)
	if err != nil {
		return nil, err
	}
	if voted {
		if _, err = s.upvotes.Remove(ctx, complaintID, p.UserID); err != nil {
			return nil, err
		}
		metrics.UpvoteToggles.WithLabelValues("removed").Inc()
		return &UpvoteResult{Message: "Upvote removed", Added: false}, nil
	}

	err = s.upvotes.Add(ctx, complaintID, p.UserID)
	switch {
	case err == nil:
		metrics.UpvoteToggles.WithLabelValues("added").Inc()
		return &UpvoteResult{Message: "Upvote added", Added: true}, nil
	case errors.Is(err, sqlstore.ErrDuplicate):
		metrics.UpvoteToggles.WithLabelValues("duplicate").Inc()
		return &UpvoteResult{Message: "Upvote already processed", Added: true}, nil
	case errors.Is(err, sqlstore.ErrForeignKey):
		// 检查之后投诉被删除
		return nil, ErrComplaintNotFound
	default:
		return nil, err
	}
}
