// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the alpha-k8s CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alpha-k8s",
		Short: "Provision isolated namespaces on EKS clusters",
	}

	cmd.AddCommand(Create())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Version())

	return cmd
}
