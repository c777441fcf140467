package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateReceipt(ctx context.Context, receipt Receipt) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(6, "Receipt", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(6, receipt.StoreName, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	m.AddRow(15,
		col.New(6).Add(
			text.New("Order number: #"+receipt.OrderNumber, props.Text{Top: 0}),
			text.New("Date paid: "+receipt.DatePaid, props.Text{Top: 4}),
		),
		col.New(6).Add(
			text.New(receipt.StoreURL, props.Text{Align: align.Right}),
		),
	)

	shipTo := col.New(6).Add(text.New("Ship to", props.Text{Style: fontstyle.Bold}))
	if receipt.ShipToName != "" {
		shipTo.Add(text.New(receipt.ShipToName, props.Text{Top: 5}))
	}
	for i, line := range receipt.ShipToAddress {
		shipTo.Add(text.New(line, props.Text{Top: float64(9 + 4*i)}))
	}
	m.AddRow(30,
		col.New(6).Add(
			text.New("Billed to", props.Text{Style: fontstyle.Bold}),
			text.New(receipt.CustomerName, props.Text{Top: 5}),
			text.New(receipt.CustomerEmail, props.Text{Top: 9}),
		),
		shipTo,
	)

	m.AddRow(12,
		text.NewCol(12, receipt.Total+" paid on "+receipt.DatePaid, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   3,
		}),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range receipt.Items {
		m.AddRow(10,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	totalRow(m, "Subtotal", receipt.Subtotal)
	if receipt.Discount != "" {
		label := "Discount"
		if code := strings.TrimSpace(receipt.DiscountCode); code != "" {
			label += " (" + code + ")"
		}
		totalRow(m, label, "-"+receipt.Discount)
	}
	if receipt.Shipping != "" {
		totalRow(m, "Shipping", receipt.Shipping)
	}
	totalRow(m, "Total", receipt.Total)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func totalRow(m core.Maroto, label, value string) {
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, label, props.Text{Size: 9}),
		text.NewCol(2, value, props.Text{Size: 9, Align: align.Right}),
	)
}
