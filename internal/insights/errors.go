package insights

import "fmt"

// UnparseableError reports model output that could not be decoded into
// the expected result shape even after extraction. It is distinct from
// fallback exhaustion: the request itself succeeded, the reply did not.
type UnparseableError struct {
	Text string // The cleaned output that failed to decode
	Err  error
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("unparseable model output: %v", e.Err)
}

func (e *UnparseableError) Unwrap() error {
	return e.Err
}
