package async

import (
	"context"
	"errors"
	"testing"
	"time"
)

// helper to quickly build a ready channel
func ready[T any](v T, err error) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Data: v, Err: err}
	close(ch)
	return ch
}

func TestAwait(t *testing.T) {
	want := 42
	got, err := Await(ready(want, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("want %d, got %d", want, got)
	}
}

func TestGoHelper(t *testing.T) {
	ch := Go(func() (int, error) { return 7, nil })
	got, err := Await(ch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("want 7, got %d", got)
	}
}

func TestGoPropagatesError(t *testing.T) {
	e := errors.New("boom")
	_, err := Await(Go(func() (string, error) { return "", e }))
	if !errors.Is(err, e) {
		t.Fatalf("want error %v, got %v", e, err)
	}
}

func TestAwaitContext_Result(t *testing.T) {
	got, err := AwaitContext(context.Background(), ready("caption", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "caption" {
		t.Fatalf("want caption, got %q", got)
	}
}

func TestAwaitContext_Deadline(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	ch := Go(func() (string, error) {
		<-release
		return "late", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := AwaitContext(ctx, ch)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
	if got != "" {
		t.Fatalf("want zero value, got %q", got)
	}
}
