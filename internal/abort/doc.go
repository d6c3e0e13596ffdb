// Package abort coordinates cancellation between user-triggered operations.
//
// A [Coordinator] owns at most one live [Token]. Starting a new operation
// with [Coordinator.CreateController] cancels whatever operation was running
// before it, so two rapid invocations never both run to completion. A
// finishing operation releases its token with [Coordinator.Clear], which is
// a no-op once a newer operation has taken over.
package abort
