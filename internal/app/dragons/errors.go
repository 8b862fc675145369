package dragons

import "errors"

var (
	ErrBadLimit         = errors.New("bad_limit")
	ErrOffsetTooBig     = errors.New("offset_too_big")
	ErrOwnerNotFound    = errors.New("owner_not_found")
	ErrTokenNotFound    = errors.New("token_not_found")
	ErrSnapshotNotReady = errors.New("snapshot_not_ready")
	// ErrIndexCorrupt means an id from a published list is missing from
	// a map every listed id must have an entry in. It fails the single
	// request, never the process.
	ErrIndexCorrupt = errors.New("index_corrupt")
)
