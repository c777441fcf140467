package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/customer/domain"
	"github.com/smallbiznis/voltshop/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Clock clock.Clock `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	clock clock.Clock
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: c,
	}
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) (domain.Customer, error) {
	email := domain.NormalizeEmail(req.Email)
	if !domain.ValidEmail(email) {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Customer{}, err
	}

	now := s.clock.Now().UTC()
	customer := domain.Customer{
		ID:        s.genID.Generate(),
		Email:     email,
		CreatedAt: now,
	}
	if existing != nil {
		customer = *existing
	}
	customer.UpdatedAt = now

	mergeString(&customer.Name, req.Name)
	mergeString(&customer.Phone, req.Phone)
	if addr := req.Address; addr != nil && strings.TrimSpace(addr.Line1) != "" {
		customer.AddressLine1 = strings.TrimSpace(addr.Line1)
		customer.AddressLine2 = strings.TrimSpace(addr.Line2)
		customer.City = strings.TrimSpace(addr.City)
		customer.State = strings.TrimSpace(addr.State)
		customer.PostalCode = strings.TrimSpace(addr.PostalCode)
		customer.Country = strings.ToUpper(strings.TrimSpace(addr.Country))
	}

	if existing != nil {
		if err := s.repo.Update(ctx, s.db, &customer); err != nil {
			return domain.Customer{}, err
		}
		return customer, nil
	}

	if err := s.repo.Upsert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}
	// A concurrent insert may have won the email; return the stored row.
	stored, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.Customer{}, err
	}
	if stored != nil {
		customer = *stored
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	segment, err := domain.ParseSegment(req.Segment)
	if err != nil {
		return domain.ListResponse{}, err
	}

	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}.Normalize()
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Segment: segment,
		Email:   domain.NormalizeEmail(req.Email),
	}, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, page.PageSize, func(c domain.Customer) string {
		return pagination.CursorFor(c.ID.String(), c.CreatedAt)
	})

	summaries, err := s.summarize(ctx, items)
	if err != nil {
		return domain.ListResponse{}, err
	}
	return domain.ListResponse{PageInfo: pageInfo, Customers: summaries}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Summary, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || customerID == 0 {
		return domain.Summary{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Summary{}, err
	}
	if item == nil {
		return domain.Summary{}, domain.ErrNotFound
	}

	summaries, err := s.summarize(ctx, []domain.Customer{*item})
	if err != nil {
		return domain.Summary{}, err
	}
	return summaries[0], nil
}

func (s *Service) ResolveSegment(ctx context.Context, segment domain.Segment) ([]string, error) {
	switch segment {
	case domain.SegmentAll, domain.SegmentHasOrders, domain.SegmentNoOrders:
	default:
		return nil, domain.ErrInvalidSegment
	}
	return s.repo.SegmentEmails(ctx, s.db, segment)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.db)
}

func (s *Service) summarize(ctx context.Context, items []domain.Customer) ([]domain.Summary, error) {
	emails := make([]string, 0, len(items))
	for _, item := range items {
		emails = append(emails, item.Email)
	}
	stats, err := s.repo.OrderStats(ctx, s.db, emails)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Summary, 0, len(items))
	for _, item := range items {
		st := stats[item.Email]
		out = append(out, domain.Summary{
			Customer:      item,
			OrderCount:    st.OrderCount,
			LifetimeSpend: st.LifetimeSpend,
			LastOrderAt:   st.LastOrderAt,
		})
	}
	return out, nil
}

func mergeString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}
