package fund

import (
	"fmt"
	"time"
)

// ValidationError reports malformed or out-of-range input. It names the
// offending field and value so callers can surface it directly.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func errValidation(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: fmt.Sprint(value), Reason: reason}
}

// InsufficientUnitsError reports a withdrawal that exceeds the investor's
// aggregate holdings. No partial debit is ever performed.
type InsufficientUnitsError struct {
	InvestorID int64
	Requested  Quantity
	Held       Quantity
}

func (e *InsufficientUnitsError) Error() string {
	return fmt.Sprintf("investor %d holds %s units, cannot cover %s", e.InvestorID, e.Held, e.Requested)
}

// StaleConfirmationError reports a fee-apply token that does not match a
// freshly computed preview of the same period.
type StaleConfirmationError struct {
	Period string
}

func (e *StaleConfirmationError) Error() string {
	return fmt.Sprintf("confirmation token for period %s is stale, preview the fees again", e.Period)
}

// ConsistencyError reports that replaying the transaction log failed to
// reconcile. The operation that triggered the replay is aborted and the
// ledger keeps its pre-operation state.
type ConsistencyError struct {
	TransactionID int64
	Reason        string
}

func (e *ConsistencyError) Error() string {
	if e.TransactionID == 0 {
		return fmt.Sprintf("ledger replay failed: %s", e.Reason)
	}
	return fmt.Sprintf("ledger replay failed at transaction %d: %s", e.TransactionID, e.Reason)
}

// LockTimeoutError reports contention on the ledger mutation lock. The
// operation performed no work and is safe to retry.
type LockTimeoutError struct {
	Timeout time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("could not acquire ledger lock within %s", e.Timeout)
}
