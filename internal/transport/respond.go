package transport

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rpggio/boardsum/internal/domain/event"
)

// writeAck answers a webhook with the ack message, or the full ack as JSON
// when the caller asks for it.
func writeAck(w http.ResponseWriter, r *http.Request, ack event.Ack) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		writeJSON(w, http.StatusOK, ack)
		return
	}
	writeText(w, http.StatusOK, ack.Message)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
