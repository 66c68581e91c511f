package controllers

import (
	"context"
	"net/http"

	"github.com/turboairmx/quotesync/api/responses"
	"github.com/turboairmx/quotesync/api/validators"
	"github.com/turboairmx/quotesync/internal/notifications"
	"github.com/turboairmx/quotesync/internal/pricing"
	"github.com/turboairmx/quotesync/internal/quotes"
	"github.com/turboairmx/quotesync/pkg/logger"
)

type quotePricer interface {
	Price(ctx context.Context, req quotes.PriceRequest) (pricing.PricedQuote, error)
}

type quoteMailer interface {
	SendQuoteEmail(ctx context.Context, req notifications.QuoteEmailRequest) (string, error)
	SendTestEmail(ctx context.Context, to string) (string, error)
}

// QuotePrice previews quote totals for the posted items.
func QuotePrice(svc quotePricer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body quotes.PriceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		priced, err := svc.Price(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, priced)
	}
}

func QuoteEmail(svc quoteMailer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body notifications.QuoteEmailRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := svc.SendQuoteEmail(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"success": true, "messageId": id})
	}
}

type testEmailBody struct {
	Email string `json:"email"`
}

func EmailTest(svc quoteMailer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body testEmailBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id, err := svc.SendTestEmail(r.Context(), body.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"success": true, "messageId": id})
	}
}
