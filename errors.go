package anna

import "errors"

// Integration errors. They signal engine misuse and are never retried.
var (
	// ErrInvalidPhase indicates an operation used outside the phase it belongs to.
	ErrInvalidPhase = errors.New("anna: operation outside its phase")

	// ErrHandleMismatch indicates a handle that does not match the pair it claims.
	ErrHandleMismatch = errors.New("anna: handle does not match its pair")

	// ErrStaleStream indicates a stream produced for another frame.
	ErrStaleStream = errors.New("anna: stream from another frame")

	// ErrUnknownHandle indicates a handle that resolves to no body.
	ErrUnknownHandle = errors.New("anna: unknown body handle")

	// ErrInvalidSettings indicates settings rejected by Validate.
	ErrInvalidSettings = errors.New("anna: invalid settings")

	// ErrBatchOverlap indicates two records of a solver batch writing the same body.
	ErrBatchOverlap = errors.New("anna: solver batch writes a body twice")
)
