package garmentag

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOracleMaxBytes = 1 << 20 // 1MB of JSON is far beyond 33 landmarks
	oracleJPEGQuality     = 90
)

// HTTPOracle talks to a pose-estimation service. Each Detect POSTs the image
// as JPEG to URL and reads a JSON landmark document back.
type HTTPOracle struct {
	URL       string        // required: pose endpoint
	Client    *http.Client  // default: http.DefaultClient
	UserAgent string        // default: "go-garmentag/1.0"
	Timeout   time.Duration // per request; zero means no timeout
	MaxBytes  int64         // max response body size (default: 1MB)
}

// Open implements Oracle.
func (o *HTTPOracle) Open(context.Context) (Detector, error) {
	if o.URL == "" {
		return nil, fmt.Errorf("%w: HTTPOracle.URL is empty", ErrNoOracle)
	}
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &httpDetector{oracle: o, client: client, buf: new(bytes.Buffer)}, nil
}

type httpDetector struct {
	oracle *HTTPOracle
	client *http.Client
	buf    *bytes.Buffer
}

func (d *httpDetector) Detect(ctx context.Context, img image.Image) (LandmarkSet, error) {
	d.buf.Reset()
	if err := jpeg.Encode(d.buf, img, &jpeg.Options{Quality: oracleJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	if d.oracle.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.oracle.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.oracle.URL, bytes.NewReader(d.buf.Bytes()))
	if err != nil {
		return nil, err
	}
	ua := d.oracle.UserAgent
	if ua == "" {
		ua = "go-garmentag/1.0"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req) //nolint:gosec // G704: endpoint is operator-supplied
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pose service returned %s", resp.Status)
	}
	ct := resp.Header.Get("Content-Type")
	// Strip MIME parameters: "application/json; charset=utf-8" → "application/json"
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	if ct != "" && ct != "application/json" {
		return nil, fmt.Errorf("pose service returned content type %q", ct)
	}

	maxBytes := d.oracle.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultOracleMaxBytes
	}
	return decodePoseResponse(io.LimitReader(resp.Body, maxBytes))
}

// Close drops the encode buffer and the pooled connections so nothing from
// this classification outlives it.
func (d *httpDetector) Close() error {
	d.buf = new(bytes.Buffer)
	d.client.CloseIdleConnections()
	return nil
}
