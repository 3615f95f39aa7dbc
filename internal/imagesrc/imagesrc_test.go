package imagesrc

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadDataURI(t *testing.T) {
	uri := EncodeDataURI(pngBytes(t, 12, 8), "image/png")

	img, err := NewFetcher().Load(context.Background(), uri)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 8 {
		t.Errorf("bounds = %v, want 12x8", b)
	}
}

func TestDecodeDataURI(t *testing.T) {
	data, mime, err := DecodeDataURI("data:text/plain;base64,aGVsbG8=")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" || mime != "text/plain" {
		t.Errorf("got %q %q", data, mime)
	}

	if _, _, err := DecodeDataURI("data:text/plain,hello"); err == nil {
		t.Error("expected error for non-base64 data URI")
	}
	if _, _, err := DecodeDataURI("data:image/png;base64"); err == nil {
		t.Error("expected error for missing comma")
	}
	if _, _, err := DecodeDataURI("data:image/png;base64,!!!"); err == nil {
		t.Error("expected error for bad base64")
	}
}

func TestDecodeDataURIDetectsMime(t *testing.T) {
	uri := "data:;base64," + strings.TrimPrefix(EncodeDataURI(pngBytes(t, 2, 2), "x"), "data:x;base64,")
	_, mime, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	if mime != "image/png" {
		t.Errorf("mime = %q, want image/png", mime)
	}
}

func TestLoadHTTP(t *testing.T) {
	body := pngBytes(t, 5, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(AllowLoopback())
	data, mime, err := f.Fetch(context.Background(), srv.URL+"/a.png")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if mime != "image/png" || !bytes.Equal(data, body) {
		t.Errorf("mime = %q, %d bytes", mime, len(data))
	}

	img, err := f.Load(context.Background(), srv.URL+"/a.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 5 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}

func TestLoadHTTPBlocksLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	_, _, err := NewFetcher().Fetch(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "blocked host") {
		t.Fatalf("expected blocked host error, got %v", err)
	}
}

func TestLoadHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, _, err := NewFetcher(AllowLoopback()).Fetch(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("expected HTTP 404 error, got %v", err)
	}
}

func TestFetchTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	_, _, err := NewFetcher(AllowLoopback(), WithMaxBytes(1024)).Fetch(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Fatalf("expected too large error, got %v", err)
	}
}

func TestFetchUnsupportedScheme(t *testing.T) {
	_, _, err := NewFetcher().Fetch(context.Background(), "ftp://example.com/a.png")
	if err == nil || !strings.Contains(err.Error(), "unsupported scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestFetchCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewFetcher(AllowLoopback()).Fetch(ctx, srv.URL); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestDownscale(t *testing.T) {
	img, err := Decode(pngBytes(t, 200, 100))
	if err != nil {
		t.Fatal(err)
	}

	small := Downscale(img, 50)
	if b := small.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("bounds = %v, want 50x25", b)
	}
	if Downscale(img, 0) != img {
		t.Error("maxDim 0 should return the image unchanged")
	}
	if Downscale(img, 400) != img {
		t.Error("small image should be returned unchanged")
	}
}

func TestPNGDataURIRoundTrip(t *testing.T) {
	img, err := Decode(pngBytes(t, 3, 4))
	if err != nil {
		t.Fatal(err)
	}
	uri, err := PNGDataURI(img)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("uri prefix: %q", uri[:30])
	}
	back, err := NewFetcher().Load(context.Background(), uri)
	if err != nil {
		t.Fatal(err)
	}
	if back.Bounds() != img.Bounds() {
		t.Errorf("bounds %v != %v", back.Bounds(), img.Bounds())
	}
}
