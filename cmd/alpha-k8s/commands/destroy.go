package commands

import (
	"github.com/spf13/cobra"

	"github.com/headline-1/alpha-k8s/cmd/alpha-k8s/handlers"
)

// Destroy returns the destroy command.
//
// The destroy command removes everything belonging to a namespace: aws-auth
// mappings, RBAC objects, the namespace itself, and the CloudFormation
// stack. Teardown is best-effort; it keeps going past individual failures
// and reports them all at the end.
func Destroy() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "destroy <namespace>",
		Short: "Destroy a namespace and all associated resources",
		Long: `Destroy removes all resources belonging to a namespace.

This command deletes, in reverse dependency order:
  - aws-auth mappings for the namespace's IAM roles
  - RBAC RoleBindings and Roles
  - The Kubernetes namespace (and everything in it)
  - The CloudFormation stack with the IAM roles

Already-deleted resources are skipped, so destroy can be re-run to finish
a partially failed teardown.

Example:
  alpha-k8s destroy team-a -c alpha-k8s.yaml

WARNING: This operation is irreversible. All workloads in the namespace
will be deleted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Destroy(cmd.Context(), configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: alpha-k8s.yaml)")

	return cmd
}
