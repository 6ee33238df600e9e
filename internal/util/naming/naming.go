package naming

import "fmt"

// Naming functions for namespace resources.
// All derived names are pure functions of the provisioning inputs, so a
// forward step and its compensation always reference the same resource
// without carrying extra state.

// Suffixes for the per-namespace access levels.
const (
	SuffixAdmin       = "admin"
	SuffixDeployments = "deployments"
)

// Stack names the CloudFormation stack backing a namespace.
func Stack(namespace, cluster string) string {
	return fmt.Sprintf("alpha-k8s-%s-%s", cluster, namespace)
}

// Role names the namespaced RBAC Role for one access level.
func Role(namespace, suffix string) string {
	return fmt.Sprintf("%s-%s", namespace, suffix)
}

// RoleBinding names the RoleBinding pairing a Role with its group.
func RoleBinding(namespace, suffix string) string {
	return fmt.Sprintf("%s-%s", namespace, suffix)
}

// Group names the cluster-side group an IAM role maps onto.
func Group(namespace, suffix, cluster string) string {
	return fmt.Sprintf("%s-%s-%s", namespace, suffix, cluster)
}

// Username names the cluster-side user identity for an IAM role mapping.
func Username(namespace, suffix, cluster string) string {
	return fmt.Sprintf("%s-%s-%s", namespace, suffix, cluster)
}
