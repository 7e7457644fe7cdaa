package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wifiproxy/wifiproxy/internal/gateway"
)

type fakeGateway struct {
	queries     []string
	controlErr  error
	streamErr   error
	status      int
	contentType string
	frames      string
}

func (f *fakeGateway) Control(ctx context.Context, rawQuery string) ([]byte, error) {
	f.queries = append(f.queries, rawQuery)
	if f.controlErr != nil {
		return nil, f.controlErr
	}
	return []byte("OK"), nil
}

func (f *fakeGateway) OpenStream(ctx context.Context) (*gateway.Stream, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return &gateway.Stream{
		StatusCode:  f.status,
		ContentType: f.contentType,
		Body:        io.NopCloser(strings.NewReader(f.frames)),
	}, nil
}

func newTestServer(t *testing.T, gw Gateway) http.Handler {
	t.Helper()
	s, err := New(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s.Handler()
}

func TestIndex(t *testing.T) {
	h := newTestServer(t, &fakeGateway{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `src="/stream"`)
}

func TestUnknownPath(t *testing.T) {
	h := newTestServer(t, &fakeGateway{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestControl(t *testing.T) {
	gw := &fakeGateway{}
	h := newTestServer(t, gw)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/control?var=car&val=forward", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.Equal(t, []string{"var=car&val=forward"}, gw.queries)
}

func TestControlBadGateway(t *testing.T) {
	gw := &fakeGateway{controlErr: errors.New("connection refused")}
	h := newTestServer(t, gw)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/control?var=car&val=stop", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Proxy error: connection refused")
}

func TestStream(t *testing.T) {
	gw := &fakeGateway{contentType: "multipart/x-mixed-replace; boundary=frame", frames: "--frame\r\nContent-Type: image/jpeg\r\n\r\n\xff\xd8"}
	h := newTestServer(t, gw)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, gw.contentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, gw.frames, rec.Body.String())
	assert.True(t, rec.Flushed)
}

func TestStreamForwardsStatus(t *testing.T) {
	gw := &fakeGateway{status: http.StatusServiceUnavailable, contentType: "text/plain", frames: "camera busy"}
	h := newTestServer(t, gw)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "camera busy", rec.Body.String())
}

func TestStreamBadGateway(t *testing.T) {
	h := newTestServer(t, &fakeGateway{streamErr: errors.New("no route to host")})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stream error")
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, &fakeGateway{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get("X-Request-Id"))
	assert.NoError(t, err)

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", given)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, given, rec.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Header().Get("X-Request-Id"))
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, &fakeGateway{})

	req := httptest.NewRequest(http.MethodGet, "/control?var=a&val=1", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/control", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeShutdown(t *testing.T) {
	s, err := New(&fakeGateway{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
