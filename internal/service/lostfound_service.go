package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"Campus_Portal/internal/metrics"
	"Campus_Portal/internal/model"
	"Campus_Portal/internal/repository/sqlstore"
)

const maxImageBytes = 200 * 1024

type LostFoundInput struct {
	Title         string
	Description   string
	LocationFound string
	ContactInfo   string
	ImageURL      string
}

type LostFoundService struct {
	reports LostFoundStore
}

func NewLostFoundService(reports LostFoundStore) *LostFoundService {
	return &LostFoundService{reports: reports}
}

func (s *LostFoundService) Create(ctx context.Context, p *model.Principal, in LostFoundInput) (*model.LostFoundReport, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}
	r := &model.LostFoundReport{
		ReporterID:    p.UserID,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		LocationFound: strings.TrimSpace(in.LocationFound),
		ContactInfo:   strings.TrimSpace(in.ContactInfo),
		ImageURL:      strings.TrimSpace(in.ImageURL),
	}

	if r.ImageURL != "" {
		if msg := checkImageSize(r.ImageURL); msg != "" {
			return nil, invalid(msg)
		}
	}

	if err := s.reports.Create(ctx, r); err != nil {
		if sqlstore.IsRateLimited(err) {
			metrics.RateLimited.WithLabelValues("lost_found").Inc()
		}
		return nil, err
	}
	return r, nil
}

// checkImageSize 图片以 data URL 内联保存，解码后不超过 200KB
func checkImageSize(dataURL string) string {
	_, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return "field image_url must be a base64 image data URL"
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "field image_url is not valid base64"
	}
	if len(raw) > maxImageBytes {
		return "field image_url must be at most 200KB"
	}
	return ""
}

func (s *LostFoundService) List(ctx context.Context, page Page) ([]model.LostFoundReport, error) {
	page = page.normalize()
	return s.reports.List(ctx, page.Limit, page.Offset)
}

// Resolve 物品找回后删除记录
func (s *LostFoundService) Resolve(ctx context.Context, p *model.Principal, id string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	err := s.reports.Resolve(ctx, id, p.UserID)
	switch {
	case errors.Is(err, sqlstore.ErrNotFound):
		return ErrReportNotFound
	case errors.Is(err, sqlstore.ErrNotOwner):
		return ErrForbidden
	}
	return err
}
