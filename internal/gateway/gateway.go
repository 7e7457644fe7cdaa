// Package gateway talks HTTP to the device at the far end of the secondary
// adapter's link.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultStreamContentType is used when the camera does not announce one.
const DefaultStreamContentType = "multipart/x-mixed-replace; boundary=frame"

const defaultTimeout = 10 * time.Second

var ErrFetchFailed = errors.New("failed to fetch URL")

// Client issues requests against one gateway.
type Client struct {
	// BaseURL is the gateway's web root, e.g. "http://192.168.4.1".
	BaseURL string
	// StreamURL is the camera stream, e.g. "http://192.168.4.1:81/stream".
	StreamURL string

	rc     *resty.Client
	stream *resty.Client
}

// New creates a Client for the gateway at host, using the camera's usual
// stream port.
func New(host string) *Client {
	return NewWithURLs("http://"+host, fmt.Sprintf("http://%s:81/stream", host))
}

// NewWithURLs creates a Client with explicit endpoints.
func NewWithURLs(baseURL, streamURL string) *Client {
	rc := resty.New()
	rc.SetTimeout(defaultTimeout)

	// No overall timeout: a stream stays open for as long as it is watched.
	stream := resty.New()
	stream.SetDoNotParseResponse(true)

	return &Client{
		BaseURL:   baseURL,
		StreamURL: streamURL,
		rc:        rc,
		stream:    stream,
	}
}

// Fetch GETs url, or the gateway's root page when url is empty, and returns
// the body. Any non-2xx status is a failure.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		url = c.BaseURL + "/"
	}
	resp, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetchFailed, url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetchFailed, url, resp.Status())
	}
	return resp.Body(), nil
}

// Control forwards rawQuery verbatim to the gateway's /control endpoint and
// returns the reply body.
func (c *Client) Control(ctx context.Context, rawQuery string) ([]byte, error) {
	url := c.BaseURL + "/control"
	if rawQuery != "" {
		url += "?" + rawQuery
	}
	resp, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetchFailed, url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetchFailed, url, resp.Status())
	}
	return resp.Body(), nil
}

// Stream is an open camera stream. The caller must close Body.
type Stream struct {
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
}

// OpenStream connects to the camera stream. Any response the camera sends
// is returned as is, error statuses included; only an unreachable camera
// fails. The stream ends when ctx is cancelled or the camera closes it.
func (c *Client) OpenStream(ctx context.Context) (*Stream, error) {
	resp, err := c.stream.R().SetContext(ctx).Get(c.StreamURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrFetchFailed, c.StreamURL, err)
	}
	body := resp.RawBody()

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = DefaultStreamContentType
	}
	return &Stream{StatusCode: resp.StatusCode(), ContentType: contentType, Body: body}, nil
}
