package service

import (
	"context"
	"errors"
	"strings"

	"Campus_Portal/internal/model"
	"Campus_Portal/internal/repository/sqlstore"
)

type AnnouncementService struct {
	announcements AnnouncementStore
	faculty       FacultyStore
}

func NewAnnouncementService(announcements AnnouncementStore, faculty FacultyStore) *AnnouncementService {
	return &AnnouncementService{announcements: announcements, faculty: faculty}
}

// Create 作者是教师档案而不是用户账号，没有档案的教师不能发布
func (s *AnnouncementService) Create(ctx context.Context, p *model.Principal, title, content, link string) (*model.Announcement, error) {
	if !p.IsFaculty() {
		return nil, ErrForbidden
	}
	title, content, link = strings.TrimSpace(title), strings.TrimSpace(content), strings.TrimSpace(link)

	profile, err := s.faculty.FindByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, sqlstore.ErrNotFound) {
			return nil, ErrFacultyProfile
		}
		return nil, err
	}

	a := &model.Announcement{AuthorID: profile.ID, Title: title, Content: content, Link: link}
	if err = s.announcements.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AnnouncementService) List(ctx context.Context, page Page) ([]sqlstore.AnnouncementRow, error) {
	page = page.normalize()
	return s.announcements.List(ctx, page.Limit, page.Offset)
}
