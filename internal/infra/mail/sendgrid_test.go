package mail

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendGridClient_Send(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, sendEndpoint, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewSendGridClient("key", "qa@example.com", slog.New(slog.NewTextHandler(io.Discard, nil)), WithHost(srv.URL))
	require.NoError(t, c.Send(context.Background(), "ops@example.com", "October report", "Rate: 4.2%"))

	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, "October report", got["subject"])
	from := got["from"].(map[string]any)
	assert.Equal(t, "qa@example.com", from["email"])
}

func TestSendGridClient_Errors(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	assert.Error(t, NewSendGridClient("", "a@b", log).Send(ctx, "c@d", "s", "b"))
	assert.Error(t, NewSendGridClient("k", "", log).Send(ctx, "c@d", "s", "b"))
	assert.Error(t, NewSendGridClient("k", "a@b", log).Send(ctx, "", "s", "b"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	err := NewSendGridClient("k", "a@b", log, WithHost(srv.URL)).Send(ctx, "c@d", "s", "b")
	assert.ErrorContains(t, err, "status=401")
}
