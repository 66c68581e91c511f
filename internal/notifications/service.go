package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/turboairmx/quotesync/internal/models"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/treestore"
	"github.com/turboairmx/quotesync/pkg/validation"
)

// EmailProduct is one line of the product table in a quote email.
type EmailProduct struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity" validate:"gte=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (p EmailProduct) Total() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// QuoteEmailRequest carries a quote email. Attachments come either from the
// caller as base64 or, when QuoteID is set, are rendered from the stored quote.
type QuoteEmailRequest struct {
	RecipientEmail string          `json:"recipientEmail" validate:"required,email"`
	RecipientName  string          `json:"recipientName" validate:"required"`
	QuoteNumber    string          `json:"quoteNumber" validate:"required"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PDFBase64      string          `json:"pdfBase64,omitempty"`
	ExcelBase64    string          `json:"excelBase64,omitempty"`
	AttachPDF      *bool           `json:"attachPdf,omitempty"`
	AttachExcel    bool            `json:"attachExcel,omitempty"`
	Products       []EmailProduct  `json:"products,omitempty" validate:"omitempty,dive"`
	RepID          string          `json:"repId,omitempty"`
	QuoteID        string          `json:"quoteId,omitempty"`
}

func (r *QuoteEmailRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	if !r.TotalAmount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"totalAmount": "is required"})
	}
	if r.QuoteID != "" && r.RepID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
			WithDetails(map[string]string{"repId": "is required with quoteId"})
	}
	return nil
}

func (r *QuoteEmailRequest) wantsPDF() bool {
	return r.AttachPDF == nil || *r.AttachPDF
}

type ServiceParams struct {
	Mailer Mailer
	// Store is needed only to render attachments from stored quotes.
	Store          treestore.Store
	AlertRecipient string
	Logger         *logger.Logger
	Now            func() time.Time
}

type Service struct {
	mailer         Mailer
	store          treestore.Store
	alertRecipient string
	logg           *logger.Logger
	now            func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mailer required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		mailer:         params.Mailer,
		store:          params.Store,
		alertRecipient: strings.TrimSpace(params.AlertRecipient),
		logg:           logg,
		now:            now,
	}, nil
}

type quoteView struct {
	*QuoteEmailRequest
	Date             string
	Year             int
	AttachmentLabels []string
}

// SendQuoteEmail composes and sends a quote email, returning the provider message id.
func (s *Service) SendQuoteEmail(ctx context.Context, req QuoteEmailRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	attachments, labels, err := s.quoteAttachments(ctx, &req)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	view := quoteView{QuoteEmailRequest: &req, Date: now.Format("2006-01-02"), Year: now.Year(), AttachmentLabels: labels}
	textBody, err := renderText(quoteText, view)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render quote email")
	}
	htmlBody, err := renderHTML(quoteHTML, view)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render quote email")
	}

	return s.send(ctx, Message{
		To:          req.RecipientEmail,
		Subject:     "Quote #" + req.QuoteNumber + " from TurboAir",
		TextBody:    textBody,
		HTMLBody:    htmlBody,
		Attachments: attachments,
	})
}

func (s *Service) quoteAttachments(ctx context.Context, req *QuoteEmailRequest) ([]Attachment, []string, error) {
	var quote *models.Quote
	if req.QuoteID != "" && (req.wantsPDF() && req.PDFBase64 == "" || req.AttachExcel && req.ExcelBase64 == "") {
		q, err := s.loadQuote(ctx, req.RepID, req.QuoteID)
		if err != nil {
			return nil, nil, err
		}
		quote = q
	}

	var out []Attachment
	var labels []string
	if req.wantsPDF() {
		switch {
		case req.PDFBase64 != "":
			out = append(out, Attachment{Filename: "Quote_" + req.QuoteNumber + ".pdf", Content: req.PDFBase64, Encoding: EncodingBase64, ContentType: ContentTypePDF})
		case quote != nil:
			data, err := RenderQuotePDF(quote)
			if err != nil {
				return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render quote pdf")
			}
			out = append(out, binaryAttachment("Quote_"+req.QuoteNumber+".pdf", ContentTypePDF, data))
		}
		if len(out) > 0 {
			labels = append(labels, "Quote PDF Document")
		}
	}
	if req.AttachExcel {
		before := len(out)
		switch {
		case req.ExcelBase64 != "":
			out = append(out, Attachment{Filename: "Quote_" + req.QuoteNumber + ".xlsx", Content: req.ExcelBase64, Encoding: EncodingBase64, ContentType: ContentTypeXLSX})
		case quote != nil:
			data, err := RenderQuoteXLSX(quote)
			if err != nil {
				return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render quote spreadsheet")
			}
			out = append(out, binaryAttachment("Quote_"+req.QuoteNumber+".xlsx", ContentTypeXLSX, data))
		}
		if len(out) > before {
			labels = append(labels, "Quote Excel Spreadsheet")
		}
	}
	for _, a := range out {
		if _, err := a.Bytes(); err != nil {
			return nil, nil, err
		}
	}
	return out, labels, nil
}

func (s *Service) loadQuote(ctx context.Context, repID, quoteID string) (*models.Quote, error) {
	if s.store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "quote store not configured")
	}
	for _, key := range []string{repID, quoteID} {
		if err := treestore.ValidateKey(key); err != nil {
			return nil, err
		}
	}
	raw, ok, err := s.store.Read(ctx, treestore.Join("quotes", repID, quoteID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read quote")
	}
	if !ok {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "quote %s not found", quoteID)
	}
	q, err := models.QuoteFromValue(raw)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// SendTestEmail checks the mail configuration end to end.
func (s *Service) SendTestEmail(ctx context.Context, to string) (string, error) {
	to = strings.TrimSpace(to)
	if err := validation.Field("recipientEmail", to, "required,email"); err != nil {
		return "", err
	}
	htmlBody, err := renderHTML(testHTML, nil)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render test email")
	}
	return s.send(ctx, Message{
		To:       to,
		Subject:  "Test Email from TurboAir Quote System",
		TextBody: testText,
		HTMLBody: htmlBody,
	})
}

// SendImportAlert reports a failed scheduled import to the alert recipient.
func (s *Service) SendImportAlert(ctx context.Context, cause error, at time.Time) error {
	if s.alertRecipient == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "alert recipient not configured")
	}
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	htmlBody, err := renderHTML(alertHTML, map[string]string{"At": at.UTC().Format(time.RFC3339), "Error": msg})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render import alert")
	}
	_, err = s.send(ctx, Message{
		To:       s.alertRecipient,
		Subject:  "OneDrive Import Failed",
		TextBody: "The scheduled OneDrive Excel import failed with error: " + msg,
		HTMLBody: htmlBody,
	})
	return err
}

func (s *Service) send(ctx context.Context, msg Message) (string, error) {
	start := s.now()
	id, err := s.mailer.Send(ctx, msg)
	ctx = s.logg.WithFields(ctx, map[string]any{
		"subject":     msg.Subject,
		"attachments": len(msg.Attachments),
		"duration_ms": s.now().Sub(start).Milliseconds(),
	})
	if err != nil {
		s.logg.Error(ctx, "email send failed", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to send email")
	}
	s.logg.Info(s.logg.WithField(ctx, "message_id", id), "email sent")
	return id, nil
}

// QuoteEmailFromQuote fills a request from a stored quote so callers only
// need to supply the recipient.
func QuoteEmailFromQuote(q *models.Quote, recipientEmail, recipientName string) QuoteEmailRequest {
	products := make([]EmailProduct, 0, len(q.Items))
	for _, item := range q.Items {
		products = append(products, EmailProduct{SKU: item.SKU, Name: item.Name, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	return QuoteEmailRequest{
		RecipientEmail: recipientEmail,
		RecipientName:  recipientName,
		QuoteNumber:    q.QuoteNumber,
		TotalAmount:    q.Total,
		Products:       products,
		RepID:          q.RepID,
		QuoteID:        q.ID,
	}
}
