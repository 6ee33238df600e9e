// Package kube provides the Kubernetes client wrapper for namespace,
// RBAC, and aws-auth ConfigMap operations.
package kube

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/headline-1/alpha-k8s/internal/awsauth"
)

const (
	// AuthConfigMapNamespace is where the IAM authenticator mapping lives.
	AuthConfigMapNamespace = "kube-system"
	// AuthConfigMapName is the mapping ConfigMap consumed by the AWS IAM
	// authenticator.
	AuthConfigMapName = "aws-auth"
	// authMapRolesKey holds the serialized role-mapping document.
	authMapRolesKey = "mapRoles"

	managedByLabel = "app.kubernetes.io/managed-by"
	managedByValue = "alpha-k8s"
)

// Interface is the cluster API surface the provisioning flows consume.
type Interface interface {
	CreateNamespace(ctx context.Context, name string) error
	DeleteNamespace(ctx context.Context, name string) error

	CreateRole(ctx context.Context, namespace, name string, rules []rbacv1.PolicyRule) error
	DeleteRole(ctx context.Context, namespace, name string) error

	CreateRoleBinding(ctx context.Context, namespace, name, group, role string) error
	DeleteRoleBinding(ctx context.Context, namespace, name string) error

	ReadRoleMappings(ctx context.Context) ([]awsauth.RoleMapping, error)
	WriteRoleMappings(ctx context.Context, mappings []awsauth.RoleMapping) error
}

// Client implements Interface over a client-go clientset.
type Client struct {
	clientset kubernetes.Interface
}

var _ Interface = (*Client)(nil)

// NewClient creates a client from a kubeconfig file.
func NewClient(kubeconfigPath string) (*Client, error) {
	config, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return NewClientForClientset(clientset), nil
}

// NewClientForClientset wraps an existing clientset. Tests pass a fake.
func NewClientForClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// CreateNamespace creates a namespace.
func (c *Client) CreateNamespace(ctx context.Context, name string) error {
	namespace := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: map[string]string{managedByLabel: managedByValue},
		},
	}
	if _, err := c.clientset.CoreV1().Namespaces().Create(ctx, namespace, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create namespace %s: %w", name, err)
	}
	return nil
}

// DeleteNamespace deletes a namespace. Deleting a namespace that is already
// gone succeeds, so compensations stay idempotent.
func (c *Client) DeleteNamespace(ctx context.Context, name string) error {
	err := c.clientset.CoreV1().Namespaces().Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete namespace %s: %w", name, err)
	}
	return nil
}

// CreateRole creates a namespaced Role with the given rule set.
func (c *Client) CreateRole(ctx context.Context, namespace, name string, rules []rbacv1.PolicyRule) error {
	role := &rbacv1.Role{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{managedByLabel: managedByValue},
		},
		Rules: rules,
	}
	if _, err := c.clientset.RbacV1().Roles(namespace).Create(ctx, role, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create role %s/%s: %w", namespace, name, err)
	}
	return nil
}

// DeleteRole deletes a namespaced Role, tolerating absence.
func (c *Client) DeleteRole(ctx context.Context, namespace, name string) error {
	err := c.clientset.RbacV1().Roles(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete role %s/%s: %w", namespace, name, err)
	}
	return nil
}

// CreateRoleBinding binds a group subject to a namespaced Role.
func (c *Client) CreateRoleBinding(ctx context.Context, namespace, name, group, role string) error {
	binding := &rbacv1.RoleBinding{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    map[string]string{managedByLabel: managedByValue},
		},
		Subjects: []rbacv1.Subject{{
			Kind:     rbacv1.GroupKind,
			APIGroup: rbacv1.GroupName,
			Name:     group,
		}},
		RoleRef: rbacv1.RoleRef{
			APIGroup: rbacv1.GroupName,
			Kind:     "Role",
			Name:     role,
		},
	}
	if _, err := c.clientset.RbacV1().RoleBindings(namespace).Create(ctx, binding, metav1.CreateOptions{}); err != nil {
		return fmt.Errorf("failed to create role binding %s/%s: %w", namespace, name, err)
	}
	return nil
}

// DeleteRoleBinding deletes a namespaced RoleBinding, tolerating absence.
func (c *Client) DeleteRoleBinding(ctx context.Context, namespace, name string) error {
	err := c.clientset.RbacV1().RoleBindings(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete role binding %s/%s: %w", namespace, name, err)
	}
	return nil
}

// ReadRoleMappings reads the current aws-auth role-mapping document. A
// missing ConfigMap or mapRoles key reads as an empty document.
func (c *Client) ReadRoleMappings(ctx context.Context) ([]awsauth.RoleMapping, error) {
	configMap, err := c.clientset.CoreV1().ConfigMaps(AuthConfigMapNamespace).
		Get(ctx, AuthConfigMapName, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s/%s: %w", AuthConfigMapNamespace, AuthConfigMapName, err)
	}
	return awsauth.Parse(configMap.Data[authMapRolesKey])
}

// WriteRoleMappings replaces the aws-auth role-mapping document, creating
// the ConfigMap if it does not exist yet.
//
// There is no optimistic-concurrency guard here: concurrent provisioning
// requests racing on aws-auth can lose updates. Known limitation.
func (c *Client) WriteRoleMappings(ctx context.Context, mappings []awsauth.RoleMapping) error {
	doc, err := awsauth.Render(mappings)
	if err != nil {
		return err
	}

	configMaps := c.clientset.CoreV1().ConfigMaps(AuthConfigMapNamespace)
	existing, err := configMaps.Get(ctx, AuthConfigMapName, metav1.GetOptions{})
	if err != nil {
		if !apierrors.IsNotFound(err) {
			return fmt.Errorf("failed to read %s/%s: %w", AuthConfigMapNamespace, AuthConfigMapName, err)
		}
		configMap := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      AuthConfigMapName,
				Namespace: AuthConfigMapNamespace,
			},
			Data: map[string]string{authMapRolesKey: doc},
		}
		if _, err := configMaps.Create(ctx, configMap, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create %s/%s: %w", AuthConfigMapNamespace, AuthConfigMapName, err)
		}
		return nil
	}

	if existing.Data == nil {
		existing.Data = map[string]string{}
	}
	existing.Data[authMapRolesKey] = doc
	if _, err := configMaps.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", AuthConfigMapNamespace, AuthConfigMapName, err)
	}
	return nil
}
