package commands

import (
	"github.com/spf13/cobra"

	"github.com/headline-1/alpha-k8s/cmd/alpha-k8s/handlers"
)

// Create returns the command for provisioning a namespace.
//
// The command provisions the full namespace stack: a CloudFormation stack
// carrying per-namespace IAM roles, the Kubernetes namespace, RBAC roles
// and bindings for the admin and deployments access levels, and aws-auth
// mappings for the IAM roles. If any step fails, everything created so far
// is rolled back before the error is reported.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML file (default: alpha-k8s.yaml)
func Create() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "create <namespace>",
		Short: "Provision a namespace with IAM roles and RBAC",
		Long: `Create provisions a fully isolated namespace on the cluster.

The following resources are created, in order:
  1. CloudFormation stack with admin and deployments IAM roles
  2. Kubernetes namespace
  3. RBAC Role and RoleBinding for the admin access level
  4. RBAC Role and RoleBinding for the deployments access level
  5. aws-auth mappings binding each IAM role to its RBAC group

Creation is all-or-nothing: on any failure the already-created resources
are deleted in reverse order and the command exits with the original error.

Examples:
  # Provision the team-a namespace using alpha-k8s.yaml
  alpha-k8s create team-a

  # Provision using a specific config file
  alpha-k8s create team-a -c production.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Create(cmd.Context(), configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: alpha-k8s.yaml)")

	return cmd
}
