package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-pkgz/requester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestChain_RequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := slog.New(&Chain{
		Middleware: []Middleware{RequestID},
		Handler:    slog.HandlerOptions{}.NewJSONHandler(buf),
	})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	lg.With(slog.String("prefix", "test")).InfoCtx(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "test", rec["prefix"])

	buf.Reset()
	lg.InfoCtx(context.Background(), "no id")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestLoggingRoundTripper(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	buf := &bytes.Buffer{}
	lg := slog.New(slog.HandlerOptions{Level: slog.LevelDebug}.NewTextHandler(buf))

	rq := requester.New(http.Client{}, LoggingRoundTripper(lg, RoundTripperOpts{
		Level:         slog.LevelDebug,
		SecretHeaders: []string{"Authorization"},
		Secrets:       []string{"s3cr3t"},
	}))

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/bots3cr3t/getMe", strings.NewReader("token=s3cr3t"))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer s3cr3t")

	resp, err := rq.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body := &bytes.Buffer{}
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, body.String(), "body is still readable")

	out := buf.String()
	assert.Contains(t, out, "request sent")
	assert.Contains(t, out, "response received")
	assert.Contains(t, out, "/bot***/getMe")
	assert.NotContains(t, out, "s3cr3t")
}

func TestNoOp(t *testing.T) {
	lg := slog.New(NoOp())
	assert.False(t, lg.Handler().Enabled(context.Background(), slog.LevelError))
	lg.Error("discarded")
}
