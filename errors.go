package countersign

import "errors"

var (
	// ErrCommentRequired is returned when a resolution is attempted without
	// a rationale comment.
	ErrCommentRequired = errors.New("countersign: comment is required to resolve a change")

	// ErrPermissionDenied is returned when an authorization check refuses.
	ErrPermissionDenied = errors.New("countersign: permission denied")

	// ErrMutationFailed is returned when the delegated domain mutation is
	// rejected during approval. The staged change stays Pending.
	ErrMutationFailed = errors.New("countersign: domain mutation failed")

	// ErrNoMutator is returned when no mutator is registered for a change
	// kind being approved.
	ErrNoMutator = errors.New("countersign: no mutator registered for change kind")

	// ErrInvalidPayload is returned when a proposal snapshot cannot be
	// serialized.
	ErrInvalidPayload = errors.New("countersign: proposal payload cannot be serialized")

	// ErrInvalidKind is returned when a proposal names an unknown change
	// kind.
	ErrInvalidKind = errors.New("countersign: unknown change kind")
)
