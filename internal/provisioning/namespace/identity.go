package namespace

import (
	"context"
	"fmt"

	rbacv1 "k8s.io/api/rbac/v1"

	"github.com/headline-1/alpha-k8s/internal/awsauth"
	"github.com/headline-1/alpha-k8s/internal/provisioning"
	"github.com/headline-1/alpha-k8s/internal/saga"
	"github.com/headline-1/alpha-k8s/internal/util/naming"
)

// accessInput describes one access level to provision for a namespace.
type accessInput struct {
	Namespace string
	Suffix    string
	RoleARN   string
	Rules     []rbacv1.PolicyRule
}

// provisionAccess creates the cluster-side identity objects for one access
// level: an RBAC Role, a RoleBinding to the derived group, and an aws-auth
// mapping binding the IAM role to that group.
//
// The sub-routine appends its compensations to the caller's revert stack, so
// a failure in a later sub-routine unwinds this one's steps too, in global
// chronological reverse order. The aws-auth update is a plain
// read-modify-write with no concurrency guard: concurrent provisioning
// requests racing on the document can lose updates.
func provisionAccess(ctx context.Context, pctx *provisioning.Context, revert *saga.Stack, in accessInput) error {
	cluster := pctx.Config.ClusterName
	roleName := naming.Role(in.Namespace, in.Suffix)
	bindingName := naming.RoleBinding(in.Namespace, in.Suffix)
	group := naming.Group(in.Namespace, in.Suffix, cluster)
	username := naming.Username(in.Namespace, in.Suffix, cluster)

	if err := pctx.Kube.CreateRole(ctx, in.Namespace, roleName, in.Rules); err != nil {
		return err
	}
	revert.Add(saga.Compensation{
		Name: fmt.Sprintf("delete role %s/%s", in.Namespace, roleName),
		Undo: func(ctx context.Context) error {
			return pctx.Kube.DeleteRole(ctx, in.Namespace, roleName)
		},
	})
	logResourceCreated(pctx.Observer, "role", roleName)

	if err := pctx.Kube.CreateRoleBinding(ctx, in.Namespace, bindingName, group, roleName); err != nil {
		return err
	}
	revert.Add(saga.Compensation{
		Name: fmt.Sprintf("delete role binding %s/%s", in.Namespace, bindingName),
		Undo: func(ctx context.Context) error {
			return pctx.Kube.DeleteRoleBinding(ctx, in.Namespace, bindingName)
		},
	})
	logResourceCreated(pctx.Observer, "role binding", bindingName)

	mappings, err := pctx.Kube.ReadRoleMappings(ctx)
	if err != nil {
		return err
	}
	mappings = awsauth.Append(mappings, awsauth.RoleMapping{
		RoleARN:  in.RoleARN,
		Username: username,
		Groups:   []string{group},
	})
	if err := pctx.Kube.WriteRoleMappings(ctx, mappings); err != nil {
		return err
	}
	revert.Add(saga.Compensation{
		Name: fmt.Sprintf("remove aws-auth mapping for %s", in.RoleARN),
		// Re-read and remove by key: the document may have gained or lost
		// unrelated entries since the append.
		Undo: func(ctx context.Context) error {
			current, err := pctx.Kube.ReadRoleMappings(ctx)
			if err != nil {
				return err
			}
			return pctx.Kube.WriteRoleMappings(ctx, awsauth.RemoveByRoleARN(current, in.RoleARN))
		},
	})
	logResourceCreated(pctx.Observer, "aws-auth mapping", username)

	return nil
}

func logResourceCreated(observer provisioning.Observer, resourceType, name string) {
	observer.Event(provisioning.Event{
		Type:     provisioning.EventResourceCreated,
		Resource: name,
		Message:  fmt.Sprintf("%s created", resourceType),
		Fields:   map[string]string{"type": resourceType},
	})
}
