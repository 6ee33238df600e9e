// Package destroy handles namespace teardown and resource cleanup.
package destroy

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/headline-1/alpha-k8s/internal/awsauth"
	"github.com/headline-1/alpha-k8s/internal/platform/cloudformation"
	"github.com/headline-1/alpha-k8s/internal/provisioning"
	"github.com/headline-1/alpha-k8s/internal/provisioning/namespace"
	"github.com/headline-1/alpha-k8s/internal/util/naming"
)

// Provisioner handles namespace destruction.
type Provisioner struct{}

// NewProvisioner creates a new destroy provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Provision deletes everything belonging to a namespace, in reverse
// dependency order: aws-auth mappings, role bindings, roles, the namespace,
// then the stack. Teardown is best-effort; failures are collected and the
// remaining resources are still attempted.
func (p *Provisioner) Provision(pctx *provisioning.Context, name string) error {
	if err := provisioning.ValidateNamespaceName(name); err != nil {
		return err
	}

	cluster := pctx.Config.ClusterName
	stackName := naming.Stack(name, cluster)
	pctx.Observer.Printf("Destroying namespace %s on cluster %s", name, cluster)

	var errs *multierror.Error

	if err := p.removeMappings(pctx, stackName); err != nil {
		errs = multierror.Append(errs, err)
	}

	for _, suffix := range []string{naming.SuffixAdmin, naming.SuffixDeployments} {
		if err := pctx.Kube.DeleteRoleBinding(pctx, name, naming.RoleBinding(name, suffix)); err != nil {
			errs = multierror.Append(errs, err)
		}
		if err := pctx.Kube.DeleteRole(pctx, name, naming.Role(name, suffix)); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if err := pctx.Kube.DeleteNamespace(pctx, name); err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := p.deleteStack(pctx, stackName); err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("failed to destroy namespace %s: %w", name, err)
	}

	pctx.Observer.Printf("Namespace %s destroyed", name)
	return nil
}

// removeMappings drops the aws-auth entries for the namespace's IAM roles.
// The ARNs come from the stack outputs; a stack that is already gone means
// there is nothing left to unmap.
func (p *Provisioner) removeMappings(pctx *provisioning.Context, stackName string) error {
	stack, err := pctx.CFN.DescribeStack(pctx, stackName)
	if err != nil {
		if errors.Is(err, cloudformation.ErrStackNotFound) {
			return nil
		}
		return err
	}

	mappings, err := pctx.Kube.ReadRoleMappings(pctx)
	if err != nil {
		return err
	}

	kept := mappings
	for _, key := range []string{namespace.OutputAdminRole, namespace.OutputDeploymentsRole} {
		if arn, ok := stack.Outputs[key]; ok {
			kept = awsauth.RemoveByRoleARN(kept, arn)
		}
	}
	if len(kept) == len(mappings) {
		return nil
	}
	return pctx.Kube.WriteRoleMappings(pctx, kept)
}

// deleteStack tears the stack down and waits for completion. A missing
// stack counts as already destroyed.
func (p *Provisioner) deleteStack(pctx *provisioning.Context, stackName string) error {
	if err := pctx.CFN.DeleteStack(pctx, stackName); err != nil {
		return err
	}
	return pctx.Poller.WaitForDelete(pctx, stackName)
}
