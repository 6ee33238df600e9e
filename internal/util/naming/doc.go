// Package naming derives deterministic names for all remote resources
// belonging to a provisioned namespace.
package naming
