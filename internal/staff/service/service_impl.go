package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltshop/internal/clock"
	"github.com/smallbiznis/voltshop/internal/staff/domain"
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
	repo  domain.Repository
	genID *snowflake.Node
	clock clock.Clock
}

func New(p Params) domain.Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("staff.service"),
		repo:  p.Repo,
		genID: p.GenID,
		clock: c,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.SecretResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	secret, err := domain.NewSecret()
	if err != nil {
		return nil, err
	}
	id := s.genID.Generate()
	keyID := newKeyID(id)
	if err := s.insert(ctx, id, keyID, name, role, secret); err != nil {
		return nil, err
	}

	s.log.Info("staff key created", zap.String("key_id", keyID), zap.String("role", string(role)))
	return &domain.SecretResponse{
		KeyID:  keyID,
		Role:   role,
		APIKey: domain.FormatKey(keyID, secret),
	}, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	keys, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(keys))
	for _, key := range keys {
		resp = append(resp, domain.Response{
			KeyID:      key.KeyID,
			Name:       key.Name,
			Role:       key.Role,
			IsActive:   key.IsActive,
			CreatedAt:  key.CreatedAt,
			LastUsedAt: key.LastUsedAt,
			RevokedAt:  key.RevokedAt,
		})
	}
	return resp, nil
}

func (s *Service) Revoke(ctx context.Context, keyID string) error {
	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return domain.ErrInvalidKeyID
	}
	ok, err := s.repo.Revoke(ctx, s.db, keyID, s.clock.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	s.log.Info("staff key revoked", zap.String("key_id", keyID))
	return nil
}

func (s *Service) Authenticate(ctx context.Context, raw string) (domain.Principal, error) {
	keyID, secret, err := domain.ParseKey(raw)
	if err != nil {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	key, err := s.repo.FindByKeyID(ctx, s.db, keyID)
	if err != nil {
		return domain.Principal{}, err
	}
	if key == nil || !key.IsActive || !domain.VerifySecret(secret, key.SecretHash) {
		return domain.Principal{}, domain.ErrUnauthorized
	}

	if err := s.repo.TouchLastUsed(ctx, s.db, keyID, s.clock.Now().UTC()); err != nil {
		s.log.Warn("failed to record staff key usage", zap.String("key_id", keyID), zap.Error(err))
	}
	return domain.Principal{KeyID: key.KeyID, Name: key.Name, Role: key.Role}, nil
}

func (s *Service) EnsureBootstrap(ctx context.Context, raw string, role string) (bool, error) {
	keyID, secret, err := domain.ParseKey(raw)
	if err != nil {
		return false, err
	}
	parsedRole, err := domain.ParseRole(role)
	if err != nil {
		return false, err
	}

	existing, err := s.repo.FindByKeyID(ctx, s.db, keyID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := s.insert(ctx, s.genID.Generate(), keyID, "bootstrap", parsedRole, secret); err != nil {
		return false, err
	}
	s.log.Info("bootstrap staff key registered", zap.String("key_id", keyID), zap.String("role", string(parsedRole)))
	return true, nil
}

func (s *Service) insert(ctx context.Context, id snowflake.ID, keyID, name string, role domain.Role, secret string) error {
	hash, err := domain.HashSecret(secret)
	if err != nil {
		return err
	}
	now := s.clock.Now().UTC()
	return s.repo.Insert(ctx, s.db, &domain.Key{
		ID:         id,
		KeyID:      keyID,
		Name:       name,
		Role:       role,
		SecretHash: hash,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func newKeyID(id snowflake.ID) string {
	return strconv.FormatInt(int64(id), 36)
}
