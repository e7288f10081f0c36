package artifactstore

import (
	"context"
	"testing"

	"github.com/apresai/narrated-demo/internal/config"
)

func TestNew_NoBucketReturnsNilStore(t *testing.T) {
	s, err := New(context.Background(), config.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s != nil {
		t.Fatalf("expected nil store when S3Bucket is empty, got %+v", s)
	}
}

func TestNilStore_MirrorIsNoOp(t *testing.T) {
	var s *Store
	key, err := s.Mirror(context.Background(), "proj_1", "/does/not/exist.mp4")
	if err != nil {
		t.Fatalf("Mirror on nil store should not error, got %v", err)
	}
	if key != "" {
		t.Fatalf("expected empty key from nil store, got %q", key)
	}
}

func TestNilStore_MirrorExportsIsNoOp(t *testing.T) {
	var s *Store
	keys, err := s.MirrorExports(context.Background(), "proj_1", map[string]string{
		"final_mp4": "/does/not/exist.mp4",
	})
	if err != nil {
		t.Fatalf("MirrorExports on nil store should not error, got %v", err)
	}
	if keys != nil {
		t.Fatalf("expected nil keys map from nil store, got %+v", keys)
	}
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"out.mp4":     "video/mp4",
		"mix.wav":     "audio/wav",
		"script.srt":  "application/x-subrip",
		"unknown.bin": "application/octet-stream",
	}
	for path, want := range cases {
		if got := contentTypeFor(path); got != want {
			t.Errorf("contentTypeFor(%q) = %q, want %q", path, got, want)
		}
	}
}
