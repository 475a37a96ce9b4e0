package sticker

import "fmt"

// ConfigurationError reports an invalid caller-supplied parameter. It is fatal
// for the request and never retried.
type ConfigurationError struct {
	Param  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Detail)
}

// UpstreamServiceError reports a failed or malformed response from an external
// generation/isolation/video service. Fatal for the current request; retry
// policy, if any, belongs to the calling layer.
type UpstreamServiceError struct {
	Service string
	Err     error
}

func (e *UpstreamServiceError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *UpstreamServiceError) Unwrap() error { return e.Err }

// ContractViolationError reports an external collaborator returning output
// that breaks an assumed invariant (e.g. wrong frame count). Treated as a bug
// signal, not a transient condition.
type ContractViolationError struct {
	Service string
	Detail  string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s violated contract: %s", e.Service, e.Detail)
}

// BudgetExceededError reports that the encoded artifact still exceeds the byte
// ceiling after the single corrective re-encode. Non-fatal: the artifact is
// written and returned alongside this error so the caller can decide.
type BudgetExceededError struct {
	Size   int64
	Budget int64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("encoded artifact is %d bytes, exceeds %d byte budget", e.Size, e.Budget)
}
