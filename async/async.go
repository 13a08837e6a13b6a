package async

import "context"

type Result[T any] struct {
	Data T
	Err  error
}

// Go runs fn on its own goroutine and delivers exactly one Result.
func Go[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1) // buffered so sender never blocks
	go func() {
		defer close(ch)
		v, err := fn()
		ch <- Result[T]{Data: v, Err: err}
	}()
	return ch
}

func Await[T any](ch <-chan Result[T]) (T, error) {
	res := <-ch
	return res.Data, res.Err
}

// AwaitContext is Await bounded by ctx. On cancellation the producer is left
// to finish on its own; the buffered channel lets it exit.
func AwaitContext[T any](ctx context.Context, ch <-chan Result[T]) (T, error) {
	select {
	case res := <-ch:
		return res.Data, res.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
