package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/pinchat/pinchat-server/internal/auth"
	"github.com/pinchat/pinchat-server/internal/config"
	"github.com/pinchat/pinchat-server/internal/core"
	"github.com/pinchat/pinchat-server/internal/files"
	"github.com/pinchat/pinchat-server/internal/log"
	"github.com/pinchat/pinchat-server/internal/proto"
	"github.com/pinchat/pinchat-server/internal/store"
	"github.com/pinchat/pinchat-server/internal/store/sqlite"
)

type testEnv struct {
	ts *httptest.Server
	st store.Store
}

// newTestEnv spins up the full router on an in-memory store.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	fs, err := files.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("create file store: %v", err)
	}

	logger := log.Disabled()
	cfg := config.Default()
	cfg.JWTSecret = "test-secret"

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})
	hub := core.NewHub(st, fs, cfg.HistoryLimit, logger)

	srv := NewServer(hub, authService, st, fs, &cfg, logger)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, st: st}
}

func (e *testEnv) postJSON(t *testing.T, path, token string, body any) *stdhttp.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req, err := stdhttp.NewRequest(stdhttp.MethodPost, e.ts.URL+path, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path, token string) *stdhttp.Response {
	t.Helper()

	req, err := stdhttp.NewRequest(stdhttp.MethodGet, e.ts.URL+path, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// register creates a user through the API and returns their token.
func (e *testEnv) register(t *testing.T, username string) string {
	t.Helper()

	resp := e.postJSON(t, "/api/register", "", RegisterRequest{Username: username, Password: "secret123"})
	if resp.StatusCode != stdhttp.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	var out AuthResponse
	decodeBody(t, resp, &out)
	return out.Token
}

func decodeBody(t *testing.T, resp *stdhttp.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

// wsFrame mirrors the outbound envelope with a raw payload so tests can
// decode it per frame type.
type wsFrame struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func (e *testEnv) dialWS(t *testing.T, ctx context.Context, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

// mustFrame reads frames until one of the wanted type arrives.
func mustFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, wantType string) wsFrame {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		readCtx, cancel := context.WithDeadline(ctx, deadline)
		var frame wsFrame
		err := wsjson.Read(readCtx, conn, &frame)
		cancel()
		if err != nil {
			t.Fatalf("read ws frame while waiting for %q: %v", wantType, err)
		}
		if frame.Type == wantType {
			return frame
		}
	}
}

func sendFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", typ, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}); err != nil {
		t.Fatalf("write %s frame: %v", typ, err)
	}
}
