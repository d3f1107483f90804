package httpclient

import (
	"context"
	"crypto/md5"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/vertextoedge/httpfetch/internal/domain"
)

func TestClient_Probe(t *testing.T) {
	content := []byte("hello world")
	digest := md5.Sum(content)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("probe used method %s, want HEAD", r.Method)
		}
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", strconv.Itoa(len(content)))
		w.Header().Set("Content-MD5", base64.StdEncoding.EncodeToString(digest[:]))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(DefaultOptions())
	caps, err := client.Probe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if caps.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", caps.StatusCode)
	}
	if caps.ContentLength != int64(len(content)) {
		t.Errorf("ContentLength = %d, want %d", caps.ContentLength, len(content))
	}
	if !caps.AcceptsRanges {
		t.Error("AcceptsRanges = false, want true")
	}
	if string(caps.ContentMD5) != string(digest[:]) {
		t.Errorf("ContentMD5 = %x, want %x", caps.ContentMD5, digest)
	}
}

func TestClient_Probe_NoCapabilities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(DefaultOptions())
	caps, err := client.Probe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}

	if caps.AcceptsRanges {
		t.Error("AcceptsRanges = true, want false")
	}
	if caps.ContentMD5 != nil {
		t.Errorf("ContentMD5 = %x, want nil", caps.ContentMD5)
	}
}

func TestClient_Probe_MalformedContentMD5(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-MD5", "not base64!!!")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(DefaultOptions())
	caps, err := client.Probe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if caps.ContentMD5 != nil {
		t.Errorf("malformed Content-MD5 should be dropped, got %x", caps.ContentMD5)
	}
}

func TestClient_Probe_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(DefaultOptions())
	caps, err := client.Probe(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Probe() error = %v, non-OK status should not be a transport error", err)
	}
	if caps.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", caps.StatusCode)
	}
}

func TestClient_Probe_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := New(DefaultOptions())
	_, err := client.Probe(context.Background(), srv.URL)
	if !domain.IsTransport(err) {
		t.Errorf("Probe() error = %v, want transport error", err)
	}
}

func TestClient_FetchAll(t *testing.T) {
	content := []byte("full stream body")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Range") != "" {
			t.Error("FetchAll should not send a Range header")
		}
		w.Write(content)
	}))
	defer srv.Close()

	client := New(DefaultOptions())
	body, err := client.FetchAll(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	defer body.Close()

	got, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("body = %q, want %q", got, content)
	}
}

func TestClient_FetchRange(t *testing.T) {
	content := []byte("0123456789")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// httptest's default handler does not honor ranges; serve manually.
		rng := r.Header.Get("Range")
		if rng != "bytes=2-5" {
			t.Errorf("Range header = %q, want bytes=2-5", rng)
		}
		w.Header().Set("Content-Range", "bytes 2-5/10")
		w.WriteHeader(http.StatusPartialContent)
		w.Write(content[2:6])
	}))
	defer srv.Close()

	client := New(DefaultOptions())
	body, err := client.FetchRange(context.Background(), srv.URL, 2, 5)
	if err != nil {
		t.Fatalf("FetchRange() error = %v", err)
	}
	defer body.Close()

	got, _ := io.ReadAll(body)
	if string(got) != "2345" {
		t.Errorf("range body = %q, want %q", got, "2345")
	}
}

func TestClient_FetchRange_Ignored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 without Content-Range: server ignored the range.
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("whole body"))
	}))
	defer srv.Close()

	client := New(DefaultOptions())
	_, err := client.FetchRange(context.Background(), srv.URL, 0, 3)
	if !errors.Is(err, domain.ErrRangeNotSupported) {
		t.Errorf("FetchRange() error = %v, want ErrRangeNotSupported", err)
	}
}

func TestClient_FetchRange_NotSatisfiable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
	}))
	defer srv.Close()

	client := New(DefaultOptions())
	_, err := client.FetchRange(context.Background(), srv.URL, 100, 200)
	if !errors.Is(err, domain.ErrRangeNotSupported) {
		t.Errorf("FetchRange() error = %v, want ErrRangeNotSupported", err)
	}
}
