package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/discount/domain"
	"github.com/smallbiznis/voltshop/pkg/db"
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
		log:   p.Log.Named("discount.service"),
		genID: p.GenID,
		repo:  p.Repo,
		clock: c,
	}
}

// Validate never mutates the code; redemption limits are enforced by the one-time
// provider coupon minted at checkout.
func (s *Service) Validate(ctx context.Context, req domain.ValidateRequest) (domain.Validation, error) {
	if req.SubtotalAmount < 0 {
		return domain.Validation{}, domain.ErrInvalidSubtotal
	}
	code := domain.NormalizeCode(req.Code)
	if code == "" {
		return domain.Validation{Valid: false, Reason: domain.ReasonMissingCode}, nil
	}

	item, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Validation{}, err
	}

	result := domain.Evaluate(item, req.SubtotalAmount, s.clock.Now())
	if !result.Valid {
		s.log.Debug("discount code rejected",
			zap.String("code", code),
			zap.String("reason", result.Reason),
		)
	}
	return result, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.DiscountCode, error) {
	code := domain.NormalizeCode(req.Code)
	if code == "" || strings.ContainsAny(code, " \t") {
		return domain.DiscountCode{}, domain.ErrInvalidCode
	}

	kind := domain.Kind(strings.ToLower(strings.TrimSpace(req.Kind)))
	switch kind {
	case domain.KindPercentage:
		if !req.PercentOff.IsPositive() || req.PercentOff.GreaterThan(hundredPercent) {
			return domain.DiscountCode{}, domain.ErrInvalidValue
		}
	case domain.KindFixed:
		if req.AmountOff <= 0 {
			return domain.DiscountCode{}, domain.ErrInvalidValue
		}
	default:
		return domain.DiscountCode{}, domain.ErrInvalidKind
	}
	if req.MinSubtotal < 0 {
		return domain.DiscountCode{}, domain.ErrInvalidValue
	}
	if req.StartsAt != nil && req.ExpiresAt != nil && !req.ExpiresAt.After(*req.StartsAt) {
		return domain.DiscountCode{}, domain.ErrInvalidWindow
	}

	now := s.clock.Now()
	item := domain.DiscountCode{
		ID:          s.genID.Generate(),
		Code:        code,
		Kind:        kind,
		PercentOff:  req.PercentOff,
		AmountOff:   req.AmountOff,
		MinSubtotal: req.MinSubtotal,
		StartsAt:    req.StartsAt,
		ExpiresAt:   req.ExpiresAt,
		Active:      true,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if kind == domain.KindFixed {
		item.PercentOff = zeroPercent
	} else {
		item.AmountOff = 0
	}

	if err := s.repo.Insert(ctx, s.db, &item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.DiscountCode{}, domain.ErrCodeExists
		}
		return domain.DiscountCode{}, err
	}

	s.log.Info("discount code created", zap.String("code", code), zap.String("kind", string(kind)))
	return item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.DiscountCode, error) {
	items, err := s.repo.List(ctx, s.db, req.ActiveOnly)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DiscountCode, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) Deactivate(ctx context.Context, code string) error {
	code = domain.NormalizeCode(code)
	if code == "" {
		return domain.ErrInvalidCode
	}
	ok, err := s.repo.Deactivate(ctx, s.db, code, s.clock.Now())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}
