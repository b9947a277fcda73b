package book

import "errors"

var (
	// ErrRejected is returned for input validation failures: non-positive
	// volume, or a limit price that rounds to zero or below. Rejection is
	// side-effect-free — the caller gets this error and no Order.
	ErrRejected = errors.New("order rejected")

	// ErrEngineFault names a violated invariant. No operation in this
	// package returns it, and the driver does not check for it.
	ErrEngineFault = errors.New("engine fault: invariant violated")

	// ErrCallTimeout indicates the engine's mailbox did not accept or
	// complete a call within the configured deadline — a programming
	// fault, not a retryable condition.
	ErrCallTimeout = errors.New("engine call timed out")
)
