package handlers

import (
	"context"
	"fmt"

	"github.com/headline-1/alpha-k8s/internal/provisioning/destroy"
)

// newDestroyProvisioner creates the destroy provisioner - can be replaced
// in tests.
var newDestroyProvisioner = func() NamespaceProvisioner {
	return destroy.NewProvisioner()
}

// Destroy handles the destroy command.
//
// It loads the configuration, builds the AWS and Kubernetes clients, and
// runs the best-effort teardown of the namespace's resources.
func Destroy(ctx context.Context, configPath, name string) error {
	pctx, err := buildContext(ctx, configPath)
	if err != nil {
		return err
	}

	if err := newDestroyProvisioner().Provision(pctx, name); err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}

	return nil
}
