// Package models holds the typed documents stored in the tree. Every entity
// is validated when it crosses the store boundary in either direction.
package models

import (
	"github.com/shopspring/decimal"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

func init() {
	// Store documents carry money as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Validator is implemented by every stored entity.
type Validator interface {
	Validate() error
}

// ToValue validates v and converts it into the normalized form a store accepts.
func ToValue(v Validator) (any, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	out, err := treestore.NormalizeValue(v)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode record")
	}
	return out, nil
}

// FromValue decodes a raw store node into T and validates it. Malformed
// records are rejected with a validation error.
func FromValue[T any, P interface {
	*T
	Validator
}](raw any) (T, error) {
	var out T
	if raw == nil {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "empty record")
	}
	if err := treestore.Decode(raw, &out); err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed record")
	}
	if err := P(&out).Validate(); err != nil {
		return out, err
	}
	return out, nil
}

func ProductFromValue(raw any) (Product, error) { return FromValue[Product](raw) }

func ClientFromValue(raw any) (Client, error) { return FromValue[Client](raw) }

func QuoteFromValue(raw any) (Quote, error) { return FromValue[Quote](raw) }

func ProjectFromValue(raw any) (Project, error) { return FromValue[Project](raw) }

func UserProfileFromValue(raw any) (UserProfile, error) { return FromValue[UserProfile](raw) }

func TrackingRecordFromValue(raw any) (TrackingRecord, error) {
	return FromValue[TrackingRecord](raw)
}

func ImportLogFromValue(raw any) (ImportLog, error) { return FromValue[ImportLog](raw) }

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
