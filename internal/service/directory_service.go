package service

import (
	"context"
	"strings"

	"Campus_Portal/internal/model"
)

type DirectoryService struct {
	faculty FacultyStore
	users   UserStore
}

func NewDirectoryService(faculty FacultyStore, users UserStore) *DirectoryService {
	return &DirectoryService{faculty: faculty, users: users}
}

func (s *DirectoryService) List(ctx context.Context, department, q string) ([]model.FacultyProfile, error) {
	return s.faculty.List(ctx, strings.TrimSpace(department), q)
}

// AddFaculty 给已有账号建立通讯录条目，账号必须已经是 faculty 角色
func (s *DirectoryService) AddFaculty(ctx context.Context, email string, p model.FacultyProfile) (*model.FacultyProfile, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleFaculty {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, invalid("field name is required")
	}
	p.ID = ""
	p.UserID = user.ID
	if p.Email == "" {
		p.Email = user.Email
	}
	if err = s.faculty.Create(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
