package model

import "errors"

// Error taxonomy for the rebalancing engine. Call sites wrap these with
// fmt.Errorf("...: %w", ...) and callers classify with errors.Is.
var (
	// ErrInvalidRange marks a collapsed range or a policy-band violation.
	ErrInvalidRange = errors.New("invalid range")

	// ErrUpstreamUnavailable marks an unreachable analytics, RPC, or advisor
	// collaborator.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInsufficientBalance marks a failed balance or allowance precondition.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrExecutionFailure marks an on-chain revert or an invalid transaction
	// plan returned by an execution collaborator.
	ErrExecutionFailure = errors.New("execution failure")

	// ErrParse marks a malformed collaborator or advisor response.
	ErrParse = errors.New("parse error")
)
