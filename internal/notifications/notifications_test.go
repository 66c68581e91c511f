package notifications

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/internal/pricing"
	"github.com/turboairmx/quotesync/internal/quotes"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
	"github.com/turboairmx/quotesync/pkg/treestore/memory"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
)

var sentAt = time.Date(2025, 5, 6, 10, 0, 0, 0, time.UTC)

type recordingMailer struct {
	sent []Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, msg Message) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.sent = append(r.sent, msg)
	return "msg-1", nil
}

func newNotifier(t *testing.T, mailer Mailer, store treestore.Store) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Mailer:         mailer,
		Store:          store,
		AlertRecipient: "ops@turboairmexico.com",
		Now:            func() time.Time { return sentAt },
	})
	require.NoError(t, err)
	return svc
}

func TestFormatCurrency(t *testing.T) {
	cases := map[string]string{
		"1234.56":   "$1,234.56",
		"0":         "$0.00",
		"2918":      "$2,918.00",
		"1234567.5": "$1,234,567.50",
		"999.999":   "$1,000.00",
		"-250":      "-$250.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCurrency(decimal.RequireFromString(in)), in)
	}
}

func TestSendQuoteEmailWithClientAttachments(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newNotifier(t, mailer, nil)
	pdf := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 fake"))

	id, err := svc.SendQuoteEmail(context.Background(), QuoteEmailRequest{
		RecipientEmail: "compras@hotel.com.mx",
		RecipientName:  "Carlos Mendoza",
		QuoteNumber:    "TAQ-202505-1234",
		TotalAmount:    decimal.RequireFromString("2918"),
		PDFBase64:      pdf,
		ExcelBase64:    base64.StdEncoding.EncodeToString([]byte("ignored")),
		Products: []EmailProduct{
			{SKU: "TSR-23SD-N6", Name: "Refrigerador 1 Puerta", Quantity: 2, UnitPrice: decimal.RequireFromString("1000")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	require.Len(t, mailer.sent, 1)

	msg := mailer.sent[0]
	assert.Equal(t, "compras@hotel.com.mx", msg.To)
	assert.Equal(t, "Quote #TAQ-202505-1234 from TurboAir", msg.Subject)
	assert.Contains(t, msg.TextBody, "Dear Carlos Mendoza,")
	assert.Contains(t, msg.TextBody, "- Total Amount: $2,918.00")
	assert.Contains(t, msg.TextBody, "- Date: 2025-05-06")
	assert.Contains(t, msg.TextBody, "- TSR-23SD-N6 - Refrigerador 1 Puerta (Qty: 2) - $1,000.00 each = $2,000.00")
	assert.Contains(t, msg.HTMLBody, "Quote PDF Document")
	assert.NotContains(t, msg.HTMLBody, "Quote Excel Spreadsheet")
	assert.Contains(t, msg.HTMLBody, "2025 TurboAir")

	require.Len(t, msg.Attachments, 1, "excel is attached only on request")
	assert.Equal(t, "Quote_TAQ-202505-1234.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, ContentTypePDF, msg.Attachments[0].ContentType)
}

func TestSendQuoteEmailValidation(t *testing.T) {
	svc := newNotifier(t, &recordingMailer{}, nil)

	_, err := svc.SendQuoteEmail(context.Background(), QuoteEmailRequest{RecipientEmail: "nope"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, _ := typed.Details().(map[string]string)
	assert.Contains(t, details, "recipientEmail")
	assert.Contains(t, details, "recipientName")
	assert.Contains(t, details, "quoteNumber")

	_, err = svc.SendQuoteEmail(context.Background(), QuoteEmailRequest{
		RecipientEmail: "a@b.mx", RecipientName: "A", QuoteNumber: "Q1",
		TotalAmount: decimal.NewFromInt(10), PDFBase64: "***",
	})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func storedQuote(t *testing.T, store *memory.Store) *models.Quote {
	t.Helper()
	builder, err := quotes.NewBuilder(quotes.BuilderParams{
		Pricing: config.PricingConfig{
			TaxRate:           decimal.RequireFromString("0.16"),
			FreeShippingAbove: decimal.NewFromInt(3000),
			ShippingFlatFee:   decimal.NewFromInt(250),
		},
		Numbers: &quotes.RandomNumberGenerator{Prefix: "TAQ", IntN: func(int) int { return 1 }},
		Now:     func() time.Time { return sentAt },
	})
	require.NoError(t, err)
	q, err := builder.Build(context.Background(), quotes.BuildInput{
		Client: models.Client{ID: "c1", Company: "Hotel Marriott Cancún", AssignedSalesRepID: "rep1"},
		Rep:    models.SalesRep{ID: "rep1", Name: "Ana López", Region: "Sureste"},
		Items:  []pricing.ItemRequest{{ProductID: "SP-THERM-003", Quantity: 3}},
		Catalog: map[string]models.Product{
			"SP-THERM-003": {SKU: "SP-THERM-003", Name: "Termostato Digital", Price: decimal.NewFromInt(2800), Category: models.SparePartsCategory},
		},
		Status: enums.QuoteStatusSent,
	})
	require.NoError(t, err)
	value, err := models.ToValue(q)
	require.NoError(t, err)
	require.NoError(t, store.Update(context.Background(), map[string]any{quotes.QuotePath(q): value}))
	return q
}

func TestSendQuoteEmailRendersStoredQuote(t *testing.T) {
	store := memory.New()
	q := storedQuote(t, store)
	mailer := &recordingMailer{}
	svc := newNotifier(t, mailer, store)

	req := QuoteEmailFromQuote(q, "compras@marriott.com.mx", "Compras")
	req.AttachExcel = true
	_, err := svc.SendQuoteEmail(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	require.Len(t, msg.Attachments, 2)
	assert.Contains(t, msg.HTMLBody, "Quote Excel Spreadsheet")

	pdf, err := msg.Attachments[0].Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	xlsx, err := msg.Attachments[1].Bytes()
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(xlsx))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	number, err := f.GetCellValue(quoteSheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, q.QuoteNumber, number)
	sku, err := f.GetCellValue(quoteSheet, "A7")
	require.NoError(t, err)
	assert.Equal(t, "SP-THERM-003", sku)
}

func TestSendQuoteEmailUnknownStoredQuote(t *testing.T) {
	svc := newNotifier(t, &recordingMailer{}, memory.New())
	_, err := svc.SendQuoteEmail(context.Background(), QuoteEmailRequest{
		RecipientEmail: "a@b.mx", RecipientName: "A", QuoteNumber: "Q1",
		TotalAmount: decimal.NewFromInt(10), RepID: "rep1", QuoteID: "missing",
	})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestSendTestEmailAndAlert(t *testing.T) {
	mailer := &recordingMailer{}
	svc := newNotifier(t, mailer, nil)

	_, err := svc.SendTestEmail(context.Background(), "")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.SendTestEmail(context.Background(), "ventas@turboairmexico.com")
	require.NoError(t, err)
	require.NoError(t, svc.SendImportAlert(context.Background(), errors.New("download: 404"), sentAt))

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, "Test Email from TurboAir Quote System", mailer.sent[0].Subject)
	alert := mailer.sent[1]
	assert.Equal(t, "ops@turboairmexico.com", alert.To)
	assert.Equal(t, "OneDrive Import Failed", alert.Subject)
	assert.Equal(t, "The scheduled OneDrive Excel import failed with error: download: 404", alert.TextBody)
	assert.Contains(t, alert.HTMLBody, "2025-05-06T10:00:00Z")
}

func TestSendFailureIsDependencyError(t *testing.T) {
	svc := newNotifier(t, &recordingMailer{err: errors.New("smtp down")}, nil)
	_, err := svc.SendTestEmail(context.Background(), "a@b.mx")
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))

	noRecipient, err := NewService(ServiceParams{Mailer: &recordingMailer{}})
	require.NoError(t, err)
	assert.Error(t, noRecipient.SendImportAlert(context.Background(), errors.New("x"), sentAt))
}

func TestBuildMIMEStructure(t *testing.T) {
	raw, err := buildMIME(mail.Address{Name: "TurboAir Quotes", Address: "quotes@turboairmexico.com"}, Message{
		To:       "a@b.mx",
		Subject:  "Cotización lista",
		TextBody: "hola",
		HTMLBody: "<p>hola</p>",
		Attachments: []Attachment{
			{Filename: "Quote_Q1.pdf", Content: "%PDF-raw", ContentType: ContentTypePDF},
		},
	}, sentAt)
	require.NoError(t, err)

	parsed, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	subject, err := new(mime.WordDecoder).DecodeHeader(parsed.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "Cotización lista", subject)
	assert.Contains(t, parsed.Header.Get("From"), "quotes@turboairmexico.com")

	mediaType, params, err := mime.ParseMediaType(parsed.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mediaType)

	reader := multipart.NewReader(parsed.Body, params["boundary"])
	first, err := reader.NextPart()
	require.NoError(t, err)
	altType, _, err := mime.ParseMediaType(first.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", altType)

	attachment, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "Quote_Q1.pdf", attachment.FileName())
	body, err := io.ReadAll(base64.NewDecoder(base64.StdEncoding, attachment))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-raw", string(body))

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestGmailMailerSendsRawMessage(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/users/me/messages/send") {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		raw, _ = body["raw"].(string)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"gmail-123"}`))
	}))
	defer srv.Close()

	mailer, err := NewGmailMailer(context.Background(), config.EmailConfig{Sender: "quotes@turboairmexico.com", SenderName: "TurboAir Quotes"},
		option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	id, err := mailer.Send(context.Background(), Message{To: "a@b.mx", Subject: "Hola", TextBody: "hola"})
	require.NoError(t, err)
	assert.Equal(t, "gmail-123", id)

	decoded, err := base64.URLEncoding.DecodeString(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "Subject: Hola")
	assert.Contains(t, string(decoded), "To: a@b.mx")
}

func TestNewGmailMailerRequiresSender(t *testing.T) {
	_, err := NewGmailMailer(context.Background(), config.EmailConfig{})
	assert.Error(t, err)
}
