package namespace

import _ "embed"

// stackTemplate is the CloudFormation template for a namespace stack. It
// creates the two per-namespace IAM roles and exports their ARNs as the
// outputs consumed by the access provisioning steps.
//
//go:embed template.json
var stackTemplate string

// Stack output keys produced by the template.
const (
	// OutputAdminRole carries the ARN of the namespace admin role.
	OutputAdminRole = "AdminKubernetesRole"
	// OutputDeploymentsRole carries the ARN of the namespace deployments role.
	OutputDeploymentsRole = "DeploymentsKubernetesRole"
)
