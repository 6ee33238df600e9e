package handlers

import (
	"context"
	"fmt"

	"github.com/headline-1/alpha-k8s/internal/provisioning/namespace"
)

// newNamespaceProvisioner creates the namespace provisioner - can be
// replaced in tests.
var newNamespaceProvisioner = func() NamespaceProvisioner {
	return namespace.NewProvisioner()
}

// Create handles the create command.
//
// It loads the configuration, builds the AWS and Kubernetes clients, and
// runs the all-or-nothing namespace provisioning flow. The provisioner
// rolls back on failure, so a returned error means no resources were left
// behind (barring compensation failures, which are reported alongside).
func Create(ctx context.Context, configPath, name string) error {
	pctx, err := buildContext(ctx, configPath)
	if err != nil {
		return err
	}

	if err := newNamespaceProvisioner().Provision(pctx, name); err != nil {
		return fmt.Errorf("create failed: %w", err)
	}

	return nil
}
