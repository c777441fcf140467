package notification

const confirmationHTMLTemplate = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8" /><title>Order #{{.OrderNumber}}</title></head>
<body style="margin:0;padding:32px;background:#f7f9fc;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;color:#1a1f36;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;padding:40px;border-radius:4px;">
    <h1 style="margin:0 0 8px;font-size:22px;">Thanks for your order{{if .CustomerName}}, {{.CustomerName}}{{end}}!</h1>
    <p style="margin:0 0 24px;color:#4f566b;">Order <strong>#{{.OrderNumber}}</strong> is confirmed. We'll email you again when it ships.</p>
    <table style="width:100%;border-collapse:collapse;font-size:14px;">
      <thead>
        <tr>
          <th style="text-align:left;padding:8px 0;border-bottom:1px solid #e3e8ee;">Item</th>
          <th style="text-align:right;padding:8px 0;border-bottom:1px solid #e3e8ee;">Qty</th>
          <th style="text-align:right;padding:8px 0;border-bottom:1px solid #e3e8ee;">Price</th>
        </tr>
      </thead>
      <tbody>
        {{range .Items}}
        <tr>
          <td style="padding:8px 0;">{{if .URL}}<a href="{{.URL}}" style="color:#1a1f36;">{{.Name}}</a>{{else}}{{.Name}}{{end}}</td>
          <td style="text-align:right;padding:8px 0;">{{.Quantity}}</td>
          <td style="text-align:right;padding:8px 0;">{{.LineTotal}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    <table style="width:100%;margin-top:16px;font-size:14px;">
      <tr><td>Subtotal</td><td style="text-align:right;">{{.Subtotal}}</td></tr>
      {{if .Discount}}<tr><td>Discount{{if .DiscountCode}} ({{.DiscountCode}}){{end}}</td><td style="text-align:right;">-{{.Discount}}</td></tr>{{end}}
      {{if .Shipping}}<tr><td>Shipping</td><td style="text-align:right;">{{.Shipping}}</td></tr>{{end}}
      <tr><td style="font-weight:700;padding-top:8px;">Total</td><td style="text-align:right;font-weight:700;padding-top:8px;">{{.Total}}</td></tr>
    </table>
    {{if .ShippingAddress}}
    <h2 style="font-size:14px;margin:32px 0 8px;">Shipping to</h2>
    <p style="margin:0;color:#4f566b;line-height:1.5;">{{if .ShippingName}}{{.ShippingName}}<br/>{{end}}{{range .ShippingAddress}}{{.}}<br/>{{end}}</p>
    {{end}}
    <p style="margin-top:32px;font-size:12px;color:#8792a2;">{{.StoreName}} &middot; <a href="{{.StoreURL}}" style="color:#8792a2;">{{.StoreURL}}</a></p>
  </div>
</body>
</html>`

const confirmationTextTemplate = `Thanks for your order{{if .CustomerName}}, {{.CustomerName}}{{end}}!

Order #{{.OrderNumber}} is confirmed. We'll email you again when it ships.

{{range .Items}}- {{.Name}} x{{.Quantity}}  {{.LineTotal}}
{{end}}
Subtotal: {{.Subtotal}}
{{if .Discount}}Discount{{if .DiscountCode}} ({{.DiscountCode}}){{end}}: -{{.Discount}}
{{end}}{{if .Shipping}}Shipping: {{.Shipping}}
{{end}}Total: {{.Total}}

{{.StoreName}} - {{.StoreURL}}
`

const dispatchHTMLTemplate = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8" /><title>Order #{{.OrderNumber}} shipped</title></head>
<body style="margin:0;padding:32px;background:#f7f9fc;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;color:#1a1f36;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;padding:40px;border-radius:4px;">
    <h1 style="margin:0 0 8px;font-size:22px;">Your order is on its way!</h1>
    <p style="margin:0 0 24px;color:#4f566b;">Order <strong>#{{.OrderNumber}}</strong> has shipped with {{.Carrier}}.</p>
    <p style="margin:0 0 8px;">Tracking number: <strong>{{.TrackingNumber}}</strong></p>
    {{if .TrackingURL}}<p style="margin:0 0 24px;"><a href="{{.TrackingURL}}" style="display:inline-block;padding:10px 16px;background:#1a1f36;color:#ffffff;text-decoration:none;border-radius:4px;">Track your package</a></p>{{end}}
    <p style="margin-top:32px;font-size:12px;color:#8792a2;">{{.StoreName}} &middot; <a href="{{.StoreURL}}" style="color:#8792a2;">{{.StoreURL}}</a></p>
  </div>
</body>
</html>`

const dispatchTextTemplate = `Your order is on its way!

Order #{{.OrderNumber}} has shipped with {{.Carrier}}.
Tracking number: {{.TrackingNumber}}
{{if .TrackingURL}}Track your package: {{.TrackingURL}}
{{end}}
{{.StoreName}} - {{.StoreURL}}
`
