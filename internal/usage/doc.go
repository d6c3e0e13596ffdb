// Package usage tracks token consumption per operation and over the lifetime
// of the installation.
//
// A session is one user-triggered operation that may issue several
// completion calls. [Tracker.UpdateUsage] adds each call's usage to the
// open session (or records it alone when no session is open) and to the
// lifetime totals. Lifetime totals are written to a key-value store by a
// single background writer; writes never block or fail the caller, and a
// failed write is only logged. [Tracker.Flush] waits for the current state
// to land and is used before the process exits.
package usage
