package pdf

import "context"

// Receipt is a paid order rendered for the buyer. Amounts are preformatted.
type Receipt struct {
	StoreName     string
	StoreURL      string
	OrderNumber   string
	DatePaid      string
	CustomerName  string
	CustomerEmail string
	ShipToName    string
	ShipToAddress []string
	Items         []ReceiptItem
	Subtotal      string
	DiscountCode  string
	Discount      string
	Shipping      string
	Total         string
}

type ReceiptItem struct {
	Description string
	Qty         int64
	UnitPrice   string
	Amount      string
}

type Provider interface {
	GenerateReceipt(ctx context.Context, receipt Receipt) ([]byte, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReceipt(ctx context.Context, receipt Receipt) ([]byte, error) {
	return nil, nil
}
