// Package imagesrc resolves image sources (data URIs and http(s) URLs) into
// decoded images and encodes images back into data URIs.
//
// It is the I/O collaborator of the editor: fetching and decoding happen here,
// never inside the document model.
package imagesrc

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// DefaultMaxBytes caps the size of a fetched or decoded source.
const DefaultMaxBytes = 10 << 20 // 10 MB

// Loader turns an image source into a decoded image.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Fetcher is the default Loader. It accepts base64 data URIs and http(s)
// URLs.
type Fetcher struct {
	client        *http.Client
	maxBytes      int64
	maxDimension  int
	allowLoopback bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.client.Timeout = d }
}

// WithMaxBytes caps the number of bytes read from a source.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithMaxDimension downscales decoded images whose longer side exceeds px.
// Zero disables scaling.
func WithMaxDimension(px int) Option {
	return func(f *Fetcher) { f.maxDimension = px }
}

// AllowLoopback lifts the loopback host block (local development, tests).
func AllowLoopback() Option {
	return func(f *Fetcher) { f.allowLoopback = true }
}

// NewFetcher creates a Fetcher with a 30s timeout and a 10 MB cap.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{maxBytes: DefaultMaxBytes}
	f.client = &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return f.checkHost(req.URL.Hostname())
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Load fetches, decodes and (if configured) downscales src.
func (f *Fetcher) Load(ctx context.Context, src string) (image.Image, error) {
	data, _, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return Downscale(img, f.maxDimension), nil
}

// Fetch returns the raw bytes of src and its MIME type.
func (f *Fetcher) Fetch(ctx context.Context, src string) ([]byte, string, error) {
	if strings.HasPrefix(src, "data:") {
		data, mime, err := DecodeDataURI(src)
		if err != nil {
			return nil, "", err
		}
		if int64(len(data)) > f.maxBytes {
			return nil, "", fmt.Errorf("imagesrc: source too large: %d bytes (max %d)", len(data), f.maxBytes)
		}
		return data, mime, nil
	}
	return f.fetchHTTP(ctx, src)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("imagesrc: invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, "", fmt.Errorf("imagesrc: unsupported scheme %q (only data, http, https)", parsed.Scheme)
	}
	if err := f.checkHost(parsed.Hostname()); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("imagesrc: build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("imagesrc: download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("imagesrc: download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("imagesrc: read body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, "", fmt.Errorf("imagesrc: source too large: exceeds %d bytes", f.maxBytes)
	}

	mime := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if mime == "" || mime == "application/octet-stream" {
		mime = DetectMIME(data)
	}
	return data, mime, nil
}

// checkHost rejects loopback and cloud metadata addresses.
func (f *Fetcher) checkHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("imagesrc: blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ip = ips[0]
	}

	if ip.IsLoopback() && !f.allowLoopback {
		return fmt.Errorf("imagesrc: blocked host: loopback address %s", host)
	}
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("imagesrc: blocked host: cloud metadata address %s", host)
	}
	return nil
}

// DecodeDataURI parses a data:<mediatype>;base64,<data> URI.
func DecodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("imagesrc: not a data URI")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("imagesrc: invalid data URI: missing comma separator")
	}
	if !strings.Contains(meta, ";base64") {
		return nil, "", fmt.Errorf("imagesrc: only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("imagesrc: invalid base64 data: %w", err)
		}
	}
	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	if mime == "" {
		mime = DetectMIME(data)
	}
	return data, mime, nil
}

// EncodeDataURI wraps data in a base64 data URI.
func EncodeDataURI(data []byte, mime string) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DetectMIME sniffs the content type of data.
func DetectMIME(data []byte) string {
	return strings.Split(http.DetectContentType(data), ";")[0]
}

// Decode decodes a PNG, JPEG, GIF or WebP image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imagesrc: decode: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imagesrc: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// PNGDataURI encodes img as a PNG data URI.
func PNGDataURI(img image.Image) (string, error) {
	data, err := EncodePNG(img)
	if err != nil {
		return "", err
	}
	return EncodeDataURI(data, "image/png"), nil
}

// Downscale shrinks img so its longer side is at most maxDim, keeping the
// aspect ratio. Images already small enough (or maxDim <= 0) are returned
// as is.
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	nw, nh := maxDim, maxDim
	if w >= h {
		nh = max(1, h*maxDim/w)
	} else {
		nw = max(1, w*maxDim/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
