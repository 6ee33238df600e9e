// Package main is the entry point for the alpha-k8s CLI.
//
// alpha-k8s provisions isolated namespaces on an EKS cluster: each
// namespace gets a CloudFormation stack with dedicated IAM roles, RBAC
// objects inside the cluster, and aws-auth mappings tying the two
// together. Creation is all-or-nothing; any failure rolls back every
// resource created so far.
//
// Commands: create, destroy, version.
//
// For detailed usage information, run:
//
//	alpha-k8s --help
package main

import (
	"fmt"
	"os"

	"github.com/headline-1/alpha-k8s/cmd/alpha-k8s/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
