// Package notifications composes and sends quote emails, test emails and
// import failure alerts.
package notifications

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
)

const (
	EncodingBase64 = "base64"

	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Attachment content is raw unless Encoding is base64.
type Attachment struct {
	Filename    string
	Content     string
	Encoding    string
	ContentType string
}

// Bytes returns the decoded attachment body.
func (a Attachment) Bytes() ([]byte, error) {
	if !strings.EqualFold(a.Encoding, EncodingBase64) {
		return []byte(a.Content), nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(a.Content))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("attachment %s is not valid base64", a.Filename))
	}
	return raw, nil
}

func binaryAttachment(filename, contentType string, data []byte) Attachment {
	return Attachment{
		Filename:    filename,
		Content:     base64.StdEncoding.EncodeToString(data),
		Encoding:    EncodingBase64,
		ContentType: contentType,
	}
}

type Message struct {
	To          string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Mailer delivers a message and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// FormatCurrency renders an amount as $1,234.56.
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	f, _ := amount.Round(2).Float64()
	return sign + "$" + humanize.FormatFloat("#,###.##", f)
}
