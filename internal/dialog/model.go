package dialog

import (
	"encoding/json"

	"github.com/qualitypulse/tracker/internal/domain/entries"
)

type State string

const (
	StateIdle State = "idle"

	// Logging a batch
	StateLogClient     State = "log_client"
	StateLogProject    State = "log_project"
	StateLogProduct    State = "log_product"
	StateLogMedia      State = "log_media"
	StateLogBatchQty   State = "log_batch_qty"
	StateLogRejections State = "log_rejections"
	StateLogReason     State = "log_reason"
	StateLogConfirm    State = "log_confirm"
)

// Payload keys
const (
	KeyDraft   = "draft"
	KeyEditID  = "edit_id"
	KeyLastMID = "last_mid"
	KeyOptions = "options"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}

// GetString reads a string value from the payload.
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt64 reads a number stored directly or after a JSON round trip.
func GetInt64(p Payload, key string) (int64, bool) {
	switch v := p[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// GetStrings reads a string list stored directly or after a JSON round trip.
func GetStrings(p Payload, key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Draft decodes the entry being built. A missing or malformed draft is empty.
func Draft(p Payload) entries.Raw {
	var raw entries.Raw
	v, ok := p[KeyDraft]
	if !ok {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		return raw
	}
	_ = json.Unmarshal(b, &raw)
	return raw
}

// WithDraft returns a copy of p carrying raw as the draft.
func WithDraft(p Payload, raw entries.Raw) Payload {
	out := Payload{}
	for k, v := range p {
		out[k] = v
	}
	out[KeyDraft] = raw
	return out
}
