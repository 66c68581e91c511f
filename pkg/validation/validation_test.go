package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
)

type sample struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	Items    []sampleItem    `json:"items" validate:"dive"`
}

type sampleItem struct {
	Discount decimal.Decimal `json:"discount_pct" validate:"gte=0,lte=100"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	err := Struct(sample{
		Price:    decimal.NewFromInt(-1),
		Quantity: 0,
		Items:    []sampleItem{{Discount: decimal.NewFromInt(150)}},
	})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	for _, field := range []string{"name", "price", "quantity", "items[0].discount_pct"} {
		if _, ok := details[field]; !ok {
			t.Fatalf("missing detail for %s: %v", field, details)
		}
	}
	if details["price"] != "must be at least 0" {
		t.Fatalf("unexpected price message %q", details["price"])
	}
}

func TestStructPassesValidInput(t *testing.T) {
	err := Struct(sample{Name: "ok", Price: decimal.RequireFromString("10.50"), Quantity: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFieldReportsUnderName(t *testing.T) {
	err := Field("recipientEmail", "not-an-email", "required,email")
	if err == nil {
		t.Fatalf("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := typed.Details().(map[string]string)
	if details["recipientEmail"] != "must be a valid email" {
		t.Fatalf("unexpected details %v", details)
	}
	if err := Field("recipientEmail", "a@b.mx", "required,email"); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
