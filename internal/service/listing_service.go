package service

import (
	"context"
	"errors"
	"strings"

	"Campus_Portal/internal/metrics"
	"Campus_Portal/internal/model"
	"Campus_Portal/internal/repository/sqlstore"
)

type ListingInput struct {
	ProductTitle string
	Description  string
	Price        float64
	ContactInfo  string
	OwnerName    string
}

type ListingService struct {
	listings ListingStore
}

func NewListingService(listings ListingStore) *ListingService {
	return &ListingService{listings: listings}
}

func (s *ListingService) Create(ctx context.Context, p *model.Principal, in ListingInput) (*model.Listing, error) {
	if !p.IsStudent() {
		return nil, ErrForbidden
	}
	l := &model.Listing{
		OwnerID:      p.UserID,
		OwnerEmail:   p.Email,
		OwnerName:    strings.TrimSpace(in.OwnerName),
		ProductTitle: strings.TrimSpace(in.ProductTitle),
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		ContactInfo:  strings.TrimSpace(in.ContactInfo),
	}

	var bad []string
	if l.ProductTitle == "" {
		bad = append(bad, "field product_title is required")
	}
	if l.Description == "" {
		bad = append(bad, "field description is required")
	}
	if l.Price <= 0 {
		bad = append(bad, "field price must be greater than 0")
	}
	if l.ContactInfo == "" {
		bad = append(bad, "field contact_info is required")
	}
	if l.OwnerName == "" {
		bad = append(bad, "field owner_name is required")
	}
	if len(bad) > 0 {
		return nil, invalid(bad...)
	}

	if err := s.listings.Create(ctx, l); err != nil {
		if sqlstore.IsRateLimited(err) {
			metrics.RateLimited.WithLabelValues("listing").Inc()
		}
		return nil, err
	}
	return l, nil
}

// List 匿名访问时去掉卖家账号和联系方式
func (s *ListingService) List(ctx context.Context, p *model.Principal, page Page) ([]model.Listing, error) {
	page = page.normalize()
	list, err := s.listings.List(ctx, page.Limit, page.Offset)
	if err != nil || p != nil {
		return list, err
	}
	for i := range list {
		list[i].OwnerID = ""
		list[i].OwnerEmail = ""
		list[i].ContactInfo = ""
	}
	return list, nil
}

// MarkSold 只允许 false -> true；对已售商品重复标记视为成功
func (s *ListingService) MarkSold(ctx context.Context, p *model.Principal, id string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(id) == "" {
		return invalid("field id is required")
	}
	_, err := s.listings.MarkSold(ctx, id, p.UserID)
	switch {
	case errors.Is(err, sqlstore.ErrNotFound):
		return ErrListingNotFound
	case errors.Is(err, sqlstore.ErrNotOwner):
		return ErrForbidden
	}
	return err
}
