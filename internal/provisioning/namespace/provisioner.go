// Package namespace implements the all-or-nothing namespace provisioning
// flow: a CloudFormation stack carrying the per-namespace IAM roles, the
// cluster namespace itself, and the RBAC/aws-auth identity objects for each
// access level.
//
// None of the steps is transactional with the others, so the flow runs on a
// shared saga revert stack: every committed side effect registers its undo,
// and any failure unwinds everything created so far in reverse order before
// the failure is surfaced.
package namespace

import (
	"context"
	"errors"
	"fmt"

	"github.com/headline-1/alpha-k8s/internal/provisioning"
	"github.com/headline-1/alpha-k8s/internal/saga"
	"github.com/headline-1/alpha-k8s/internal/util/naming"
)

// Provisioner handles namespace creation.
type Provisioner struct{}

// NewProvisioner creates a new namespace provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Provision creates the namespace end to end. On any failure it returns a
// single terminal error after attempting a full unwind; there is no partial
// success.
func (p *Provisioner) Provision(pctx *provisioning.Context, name string) error {
	if err := provisioning.ValidateNamespaceName(name); err != nil {
		return err
	}

	cluster := pctx.Config.ClusterName
	stackName := naming.Stack(name, cluster)
	revert := saga.NewStack()

	// Populated by the stack step, consumed by the access steps.
	var outputs map[string]string

	err := revert.Run(pctx,
		p.step(pctx, "cloudformation-stack", func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, pctx.Timeouts.StackCreate)
			defer cancel()

			if _, err := pctx.CFN.CreateStack(ctx, stackName, stackTemplate, map[string]string{
				"Namespace":   name,
				"ClusterName": cluster,
			}); err != nil {
				return err
			}
			// The stack exists remotely from this point on, converged or
			// not, so its teardown is registered before waiting.
			revert.Add(saga.Compensation{
				Name: fmt.Sprintf("delete stack %s", stackName),
				Undo: func(ctx context.Context) error {
					ctx, cancel := context.WithTimeout(ctx, pctx.Timeouts.StackDelete)
					defer cancel()
					if err := pctx.CFN.DeleteStack(ctx, stackName); err != nil {
						return err
					}
					return pctx.Poller.WaitForDelete(ctx, stackName)
				},
			})

			var err error
			outputs, err = pctx.Poller.WaitForCreate(ctx, stackName)
			return err
		}),
		p.step(pctx, "namespace", func(ctx context.Context) error {
			if err := pctx.Kube.CreateNamespace(ctx, name); err != nil {
				return err
			}
			revert.Add(saga.Compensation{
				Name: fmt.Sprintf("delete namespace %s", name),
				Undo: func(ctx context.Context) error {
					return pctx.Kube.DeleteNamespace(ctx, name)
				},
			})
			return nil
		}),
		p.step(pctx, "admin-access", func(ctx context.Context) error {
			arn, err := requireOutput(outputs, stackName, OutputAdminRole)
			if err != nil {
				return err
			}
			return provisionAccess(ctx, pctx, revert, accessInput{
				Namespace: name,
				Suffix:    naming.SuffixAdmin,
				RoleARN:   arn,
				Rules:     adminRules(),
			})
		}),
		p.step(pctx, "deployments-access", func(ctx context.Context) error {
			arn, err := requireOutput(outputs, stackName, OutputDeploymentsRole)
			if err != nil {
				return err
			}
			return provisionAccess(ctx, pctx, revert, accessInput{
				Namespace: name,
				Suffix:    naming.SuffixDeployments,
				RoleARN:   arn,
				Rules:     deploymentsRules(),
			})
		}),
	)
	if err != nil {
		var abort *saga.AbortError
		if errors.As(err, &abort) && abort.Unwind != nil {
			pctx.Observer.Event(provisioning.Event{
				Type:    provisioning.EventCompensationFailed,
				Step:    abort.Step,
				Message: abort.Unwind.Error(),
			})
		}
		return fmt.Errorf("failed to provision namespace %s: %w", name, err)
	}

	pctx.Observer.Printf("Namespace %s provisioned on cluster %s", name, cluster)
	return nil
}

// step wraps a saga step with start/complete/fail events.
func (p *Provisioner) step(pctx *provisioning.Context, name string, run func(ctx context.Context) error) saga.Step {
	return saga.Step{
		Name: name,
		Run: func(ctx context.Context) error {
			pctx.Observer.Event(provisioning.Event{Type: provisioning.EventStepStarted, Step: name, Message: "starting"})
			if err := run(ctx); err != nil {
				pctx.Observer.Event(provisioning.Event{Type: provisioning.EventStepFailed, Step: name, Message: err.Error()})
				return err
			}
			pctx.Observer.Event(provisioning.Event{Type: provisioning.EventStepCompleted, Step: name, Message: "completed"})
			return nil
		},
	}
}

func requireOutput(outputs map[string]string, stackName, key string) (string, error) {
	value, ok := outputs[key]
	if !ok {
		return "", fmt.Errorf("stack %s produced no %s output", stackName, key)
	}
	return value, nil
}
