// Package notification sends the buyer-facing order emails.
package notification

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"net/url"
	"regexp"
	"strings"
	"text/template"

	"github.com/gosimple/slug"
	"github.com/smallbiznis/voltshop/internal/config"
	obsmetrics "github.com/smallbiznis/voltshop/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/voltshop/internal/order/domain"
	"github.com/smallbiznis/voltshop/internal/providers/email"
	"github.com/smallbiznis/voltshop/internal/providers/pdf"
	"github.com/smallbiznis/voltshop/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	KindConfirmation = "order_confirmation"
	KindDispatch     = "order_dispatch"
)

// descriptorSuffix matches the " (Black, 2m)" suffix checkout appends to item names.
var descriptorSuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     config.Config
	Email      email.Provider
	PDF        pdf.Provider                `optional:"true"`
	Settings   *config.StoreSettingsHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics         `optional:"true"`
}

type Notifier struct {
	log        *zap.Logger
	store      config.StoreConfig
	attachPDF  bool
	email      email.Provider
	pdf        pdf.Provider
	settings   *config.StoreSettingsHolder
	obsMetrics *obsmetrics.Metrics

	confirmationHTML *htmltemplate.Template
	confirmationText *template.Template
	dispatchHTML     *htmltemplate.Template
	dispatchText     *template.Template
}

func New(p Params) orderdomain.Notifier {
	return &Notifier{
		log:              p.Log.Named("notification"),
		store:            p.Config.Store,
		attachPDF:        p.Config.Email.AttachPDF,
		email:            p.Email,
		pdf:              p.PDF,
		settings:         p.Settings,
		obsMetrics:       p.ObsMetrics,
		confirmationHTML: htmltemplate.Must(htmltemplate.New("confirmation").Parse(confirmationHTMLTemplate)),
		confirmationText: template.Must(template.New("confirmation").Parse(confirmationTextTemplate)),
		dispatchHTML:     htmltemplate.Must(htmltemplate.New("dispatch").Parse(dispatchHTMLTemplate)),
		dispatchText:     template.Must(template.New("dispatch").Parse(dispatchTextTemplate)),
	}
}

type itemView struct {
	Name      string
	URL       string
	Quantity  int64
	UnitPrice string
	LineTotal string
}

type confirmationView struct {
	StoreName       string
	StoreURL        string
	OrderNumber     int64
	CustomerName    string
	Items           []itemView
	Subtotal        string
	DiscountCode    string
	Discount        string
	Shipping        string
	Total           string
	ShippingName    string
	ShippingAddress []string
}

type dispatchView struct {
	StoreName      string
	StoreURL       string
	OrderNumber    int64
	TrackingNumber string
	Carrier        string
	TrackingURL    string
}

func (n *Notifier) SendOrderConfirmation(ctx context.Context, order orderdomain.Order) error {
	view := n.confirmationView(order)

	html, text, err := render(n.confirmationHTML, n.confirmationText, view)
	if err != nil {
		return err
	}

	msg := email.Message{
		To:      []string{order.CustomerEmail},
		Subject: "Order #" + itoa(order.OrderNumber) + " confirmed",
		HTML:    html,
		Text:    text,
		Tags:    map[string]string{"kind": KindConfirmation},
	}
	if n.attachPDF && n.pdf != nil {
		if receipt, err := n.pdf.GenerateReceipt(ctx, n.receipt(order, view)); err != nil {
			n.log.Warn("receipt pdf failed, sending without attachment",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		} else if len(receipt) > 0 {
			msg.Attachments = append(msg.Attachments, email.Attachment{
				Filename:    "receipt-" + itoa(order.OrderNumber) + ".pdf",
				ContentType: "application/pdf",
				Content:     receipt,
			})
		}
	}

	return n.send(ctx, KindConfirmation, order, msg)
}

func (n *Notifier) SendDispatchNotice(ctx context.Context, order orderdomain.Order) error {
	view := dispatchView{
		StoreName:      n.store.Name,
		StoreURL:       n.store.BaseURL,
		OrderNumber:    order.OrderNumber,
		TrackingNumber: deref(order.TrackingNumber),
		Carrier:        deref(order.Carrier),
	}
	view.TrackingURL = n.settings.Get().TrackingURL(view.Carrier, view.TrackingNumber)

	html, text, err := render(n.dispatchHTML, n.dispatchText, view)
	if err != nil {
		return err
	}

	return n.send(ctx, KindDispatch, order, email.Message{
		To:      []string{order.CustomerEmail},
		Subject: "Your order #" + itoa(order.OrderNumber) + " has shipped",
		HTML:    html,
		Text:    text,
		Tags:    map[string]string{"kind": KindDispatch},
	})
}

func (n *Notifier) send(ctx context.Context, kind string, order orderdomain.Order, msg email.Message) error {
	id, err := n.email.Send(ctx, msg)
	if err != nil {
		n.obsMetrics.RecordEmail(ctx, kind, "failed")
		return err
	}
	n.obsMetrics.RecordEmail(ctx, kind, "sent")
	n.log.Info("order email sent",
		zap.String("kind", kind),
		zap.String("order_id", order.ID.String()),
		zap.Int64("order_number", order.OrderNumber),
		zap.String("message_id", id),
	)
	return nil
}

func (n *Notifier) confirmationView(order orderdomain.Order) confirmationView {
	currency := order.Currency
	if currency == "" {
		currency = n.store.Currency
	}
	view := confirmationView{
		StoreName:       n.store.Name,
		StoreURL:        n.store.BaseURL,
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		Subtotal:        money.FormatWithSymbol(order.SubtotalAmount, currency),
		Total:           money.FormatWithSymbol(order.TotalAmount, currency),
		DiscountCode:    deref(order.DiscountCode),
		ShippingName:    deref(order.ShippingName),
		ShippingAddress: order.ShippingAddressLines(),
	}
	if order.ShippingAmount > 0 {
		view.Shipping = money.FormatWithSymbol(order.ShippingAmount, currency)
	}
	if order.DiscountAmount != nil && *order.DiscountAmount > 0 {
		view.Discount = money.FormatWithSymbol(*order.DiscountAmount, currency)
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, itemView{
			Name:      item.Name,
			URL:       n.productURL(item),
			Quantity:  item.Quantity,
			UnitPrice: money.FormatWithSymbol(item.UnitPrice, currency),
			LineTotal: money.FormatWithSymbol(item.LineTotal, currency),
		})
	}
	return view
}

// productURL links a line back to the storefront. An explicit slug wins; otherwise
// the item name, minus color and size descriptors, is slugified. A variant id
// selects the purchased variant on the product page.
func (n *Notifier) productURL(item orderdomain.OrderItem) string {
	if n.store.BaseURL == "" {
		return ""
	}
	s := deref(item.ProductSlug)
	if s == "" {
		s = slug.Make(descriptorSuffix.ReplaceAllString(item.Name, ""))
	}
	if s == "" {
		return ""
	}
	link := strings.TrimRight(n.store.BaseURL, "/") + "/products/" + s
	if variant := deref(item.VariantID); variant != "" {
		link += "?" + url.Values{"variant": {variant}}.Encode()
	}
	return link
}

func (n *Notifier) receipt(order orderdomain.Order, view confirmationView) pdf.Receipt {
	r := pdf.Receipt{
		StoreName:     n.store.Name,
		StoreURL:      n.store.BaseURL,
		OrderNumber:   itoa(order.OrderNumber),
		DatePaid:      order.CreatedAt.Format("January 2, 2006"),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		ShipToName:    view.ShippingName,
		ShipToAddress: view.ShippingAddress,
		Subtotal:      view.Subtotal,
		DiscountCode:  view.DiscountCode,
		Discount:      view.Discount,
		Shipping:      view.Shipping,
		Total:         view.Total,
	}
	for _, item := range view.Items {
		r.Items = append(r.Items, pdf.ReceiptItem{
			Description: item.Name,
			Qty:         item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.LineTotal,
		})
	}
	return r
}

func render(html *htmltemplate.Template, text *template.Template, data any) (string, string, error) {
	var htmlBuf, textBuf bytes.Buffer
	if err := html.Execute(&htmlBuf, data); err != nil {
		return "", "", err
	}
	if err := text.Execute(&textBuf, data); err != nil {
		return "", "", err
	}
	return htmlBuf.String(), textBuf.String(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
