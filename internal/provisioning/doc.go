// Package provisioning provides shared context, observability, and
// validation types for namespace provisioning flows.
//
// The provisioning domain is organized into focused subpackages:
//   - namespace/ — the all-or-nothing create flow (stack, namespace, access)
//   - destroy/ — unconditional teardown of a provisioned namespace
//
// This root package contains the shared Context and Observer used across
// subpackages.
package provisioning
