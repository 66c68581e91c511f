package notifications

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

var funcs = map[string]any{
	"currency": FormatCurrency,
}

var quoteText = texttemplate.Must(texttemplate.New("quote.txt").Funcs(funcs).Parse(`
Dear {{.RecipientName}},

Please find attached your quote #{{.QuoteNumber}}.

Quote Details:
- Quote Number: {{.QuoteNumber}}
- Total Amount: {{currency .TotalAmount}}
- Date: {{.Date}}
{{if .Products}}
Products:
{{range .Products}}- {{.SKU}} - {{.Name}} (Qty: {{.Quantity}}) - {{currency .UnitPrice}} each = {{currency .Total}}
{{end}}{{end}}
Thank you for your business!

Best regards,
TurboAir Quote System
`))

var quoteHTML = htmltemplate.Must(htmltemplate.New("quote.html").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #2196F3; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
    .content { padding: 20px; background-color: #f5f5f5; }
    .details { background: white; padding: 15px; margin: 15px 0; border-radius: 5px; }
    .footer { text-align: center; padding: 10px; color: #666; font-size: 12px; }
    td, th { padding: 8px; border: 1px solid #ddd; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>TurboAir Quote System</h1>
      <p style="margin: 0;">Professional Equipment Solutions</p>
    </div>
    <div class="content">
      <h2>Dear {{.RecipientName}},</h2>
      <p>Thank you for your interest in TurboAir products. Please find your quote details below:</p>
      <div class="details">
        <h3>Quote Details</h3>
        <p><strong>Quote Number:</strong> {{.QuoteNumber}}</p>
        <p><strong>Total Amount:</strong> {{currency .TotalAmount}}</p>
        <p><strong>Date:</strong> {{.Date}}</p>
      </div>
      {{- if .Products}}
      <div class="details">
        <h3>Products</h3>
        <table style="width: 100%; border-collapse: collapse;">
          <thead>
            <tr style="background-color: #f0f0f0;">
              <th style="text-align: left; white-space: nowrap;">SKU</th>
              <th style="text-align: left;">Product</th>
              <th style="text-align: center;">Qty</th>
              <th style="text-align: right; white-space: nowrap;">Unit Price</th>
              <th style="text-align: right; white-space: nowrap;">Total</th>
            </tr>
          </thead>
          <tbody>
            {{- range .Products}}
            <tr>
              <td style="white-space: nowrap;">{{.SKU}}</td>
              <td>{{.Name}}</td>
              <td style="text-align: center;">{{.Quantity}}</td>
              <td style="text-align: right; white-space: nowrap;">{{currency .UnitPrice}}</td>
              <td style="text-align: right; white-space: nowrap;">{{currency .Total}}</td>
            </tr>
            {{- end}}
          </tbody>
        </table>
      </div>
      {{- end}}
      {{- if .AttachmentLabels}}
      <div class="details">
        <h3>Attachments</h3>
        <ul>
          {{- range .AttachmentLabels}}
          <li>{{.}}</li>
          {{- end}}
        </ul>
      </div>
      {{- end}}
      <p>If you have any questions, please don't hesitate to contact us.</p>
      <p>Best regards,<br>TurboAir Quote System</p>
    </div>
    <div class="footer">
      <p>&copy; {{.Year}} TurboAir. All rights reserved.</p>
      <p>This is an automated email. Please do not reply directly to this message.</p>
    </div>
  </div>
</body>
</html>
`))

const testText = "This is a test email to verify the email configuration."

var testHTML = htmltemplate.Must(htmltemplate.New("test.html").Parse(`<h2>Test Email</h2>
<p>This is a test email from the TurboAir Quote System.</p>
<p>If you receive this email, the configuration is working correctly.</p>
<hr>
<p><small>Sent from TurboAir Quote System</small></p>
`))

var alertHTML = htmltemplate.Must(htmltemplate.New("alert.html").Parse(`<h2>OneDrive Import Failed</h2>
<p>The scheduled import from OneDrive failed at {{.At}}</p>
<p><strong>Error:</strong> {{.Error}}</p>
<p>Please check the cron worker logs for more details.</p>
`))

func renderText(t *texttemplate.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return strings.TrimLeft(buf.String(), "\n"), nil
}

func renderHTML(t *htmltemplate.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
