package output

import "io"

type flusher interface {
	Flush() error
}

// flushIfPossible flushes buffered writers after each line so streamed
// output stays live for consumers tailing a pipe.
func flushIfPossible(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
