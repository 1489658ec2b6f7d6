package transport

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/rpggio/boardsum/internal/trello"
)

// WebhookOptions configures inbound webhook verification. Verification is
// off when Secret is empty.
type WebhookOptions struct {
	Secret string
	// CallbackURL is the URL the webhook was registered with. When empty it
	// is rebuilt from the request.
	CallbackURL string
}

// SignatureMiddleware rejects webhook posts whose X-Trello-Webhook header
// does not match the body.
func SignatureMiddleware(opts WebhookOptions, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		if opts.Secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
			if err != nil {
				writeText(w, http.StatusBadRequest, invalidPayloadMsg)
				return
			}

			callbackURL := opts.CallbackURL
			if callbackURL == "" {
				callbackURL = requestURL(r)
			}
			if !trello.VerifySignature(opts.Secret, callbackURL, body, r.Header.Get(trello.SignatureHeader)) {
				logger.Warn("webhook signature mismatch", "request_id", RequestIDFromContext(r.Context()))
				http.Error(w, "invalid signature", http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
