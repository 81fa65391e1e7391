package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"PublicationIngest/internal/ports"
)

type stubFetcher struct {
	payloads map[string][]byte
}

func (f *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := f.payloads[url]
	if !ok {
		return nil, fmt.Errorf("get %s: status 404: %w", url, ports.ErrFetchFailed)
	}
	return body, nil
}

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Put(_ context.Context, key string, body []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), body...)
	s.puts++
	return s.URL(key), nil
}

func (s *memStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key := range s.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (s *memStore) URL(key string) string { return "mem://" + key }

func TestEnsureStoredIsIdempotent(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{payloads: map[string][]byte{
		"https://origin.example.org/report.pdf": []byte("pdf-bytes"),
	}}
	store := newMemStore()
	ingestor := New(fetcher, store, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := ingestor.EnsureStored(ctx, "https://origin.example.org/report.pdf", "pdfs1/report.pdf"); err != nil {
			t.Fatalf("EnsureStored attempt %d: %v", i+1, err)
		}
	}

	if len(store.objects) != 1 {
		t.Fatalf("expected exactly one object, got %d", len(store.objects))
	}
	if !bytes.Equal(store.objects["pdfs1/report.pdf"], []byte("pdf-bytes")) {
		t.Fatalf("stored bytes differ from origin")
	}
	if store.puts != 2 {
		t.Fatalf("expected 2 overwriting puts, got %d", store.puts)
	}
}

func TestEnsureStoredReportsFetchFailure(t *testing.T) {
	t.Parallel()

	ingestor := New(&stubFetcher{payloads: map[string][]byte{}}, newMemStore(), nil)

	err := ingestor.EnsureStored(context.Background(), "https://origin.example.org/missing.pdf", "pdfs1/missing.pdf")
	if !errors.Is(err, ports.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}
