package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/voltshop/pkg/db/pagination"
)

type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type UpsertRequest struct {
	Email   string
	Name    string
	Phone   string
	Address *Address
}

type ListRequest struct {
	PageToken string
	PageSize  int
	Segment   string
	Email     string
}

type ListResponse struct {
	pagination.PageInfo
	Customers []Summary `json:"customers"`
}

type Service interface {
	// Upsert records the latest contact snapshot for an email; blank fields keep prior values.
	Upsert(ctx context.Context, req UpsertRequest) (Customer, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetByID(ctx context.Context, id string) (Summary, error)
	// ResolveSegment returns the distinct emails in a segment ordered by email.
	ResolveSegment(ctx context.Context, segment Segment) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

var (
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidSegment = errors.New("invalid_segment")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
)
