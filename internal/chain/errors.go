package chain

import "errors"

// ErrMalformedDocument marks a response that arrived but does not match
// the expected document schema. The refresh scheduler treats it as
// fatal to the current rebuild cycle; it is never retried here.
var ErrMalformedDocument = errors.New("malformed_document")
