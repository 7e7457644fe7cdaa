package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "<html>robot</html>")
	})
	mux.HandleFunc("/control", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("var") == "broken" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		io.WriteString(w, "ok "+r.URL.RawQuery)
	})
	mux.HandleFunc("/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=123456789")
		io.WriteString(w, "--123456789\r\n")
	})
	mux.HandleFunc("/bare-stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		w.Write([]byte{0xff, 0xd8})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewWithURLs(srv.URL, srv.URL+"/stream"), srv
}

func TestNew(t *testing.T) {
	c := New("192.168.4.1")
	assert.Equal(t, "http://192.168.4.1", c.BaseURL)
	assert.Equal(t, "http://192.168.4.1:81/stream", c.StreamURL)
}

func TestFetch(t *testing.T) {
	c, srv := newGateway(t)

	body, err := c.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "<html>robot</html>", string(body))

	_, err = c.Fetch(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetchUnreachable(t *testing.T) {
	c := NewWithURLs("http://127.0.0.1:1", "http://127.0.0.1:1/stream")
	_, err := c.Fetch(context.Background(), "")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestControl(t *testing.T) {
	c, _ := newGateway(t)

	body, err := c.Control(context.Background(), "var=speed&val=100")
	require.NoError(t, err)
	assert.Equal(t, "ok var=speed&val=100", string(body))

	_, err = c.Control(context.Background(), "var=broken")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestOpenStream(t *testing.T) {
	c, srv := newGateway(t)

	s, err := c.OpenStream(context.Background())
	require.NoError(t, err)
	defer s.Body.Close()
	assert.Equal(t, http.StatusOK, s.StatusCode)
	assert.Equal(t, "multipart/x-mixed-replace; boundary=123456789", s.ContentType)
	data, err := io.ReadAll(s.Body)
	require.NoError(t, err)
	assert.Equal(t, "--123456789\r\n", string(data))

	c.StreamURL = srv.URL + "/bare-stream"
	s, err = c.OpenStream(context.Background())
	require.NoError(t, err)
	defer s.Body.Close()
	assert.Equal(t, DefaultStreamContentType, s.ContentType)

	// Error statuses come back as a stream for the caller to relay.
	c.StreamURL = srv.URL + "/nothing-here"
	s, err = c.OpenStream(context.Background())
	require.NoError(t, err)
	defer s.Body.Close()
	assert.Equal(t, http.StatusNotFound, s.StatusCode)
	data, err = io.ReadAll(s.Body)
	require.NoError(t, err)
	assert.Equal(t, "404 page not found\n", string(data))

	c.StreamURL = "http://127.0.0.1:1/stream"
	_, err = c.OpenStream(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
}
