package book

import (
	"io"
	"strings"
	"testing"
)

func TestResourceDigestIsContentDerived(t *testing.T) {
	a := makeTestResource(t, "a.png", "image/png", "payload")
	b := makeTestResource(t, "b.png", "image/png", "payload")
	c := makeTestResource(t, "c.png", "image/png", "other payload")

	if len(a.Digest()) != 32 {
		t.Fatalf("len(Digest()) = %d, want 32", len(a.Digest()))
	}
	if a.Digest() != b.Digest() {
		t.Errorf("identical payloads produced different digests: %q vs %q", a.Digest(), b.Digest())
	}
	if a.Digest() == c.Digest() {
		t.Errorf("distinct payloads share digest %q", a.Digest())
	}
}

func TestResourceFilenameFallsBackToID(t *testing.T) {
	res := makeTestResource(t, "cover.png", "image/png", "x")
	if got := res.Filename(); got != "cover.png" {
		t.Fatalf("Filename() = %q, want cover.png", got)
	}

	named, err := NewResource("res-1", strings.NewReader("x"), "image/png", "square.png")
	if err != nil {
		t.Fatalf("NewResource returned error: %v", err)
	}
	if got := named.Filename(); got != "square.png" {
		t.Fatalf("Filename() = %q, want square.png", got)
	}
}

func TestResourceOpenReadsPayload(t *testing.T) {
	res := makeTestResource(t, "note.txt", "text/plain", "hello resources")

	r := res.Open()
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll returned error: %v", err)
	}
	if string(data) != "hello resources" {
		t.Fatalf("payload = %q, want hello resources", data)
	}
	if res.Size() != int64(len("hello resources")) {
		t.Fatalf("Size() = %d, want %d", res.Size(), len("hello resources"))
	}
}
