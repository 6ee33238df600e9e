// Package handlers implements the command execution logic for the
// alpha-k8s CLI.
//
// Handlers load configuration, build the AWS and Kubernetes clients, and
// delegate to the provisioning packages. Client construction goes through
// factory variables so tests can substitute fakes.
package handlers

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"

	"github.com/headline-1/alpha-k8s/internal/config"
	"github.com/headline-1/alpha-k8s/internal/platform/cloudformation"
	"github.com/headline-1/alpha-k8s/internal/platform/kube"
	"github.com/headline-1/alpha-k8s/internal/provisioning"
)

// NamespaceProvisioner is the surface shared by the create and destroy
// provisioners.
type NamespaceProvisioner interface {
	Provision(pctx *provisioning.Context, name string) error
}

// Factory function variables - can be replaced in tests.
var (
	// loadConfigFile loads the configuration file.
	loadConfigFile = config.LoadFile

	// newCloudFormationAPI builds the CloudFormation SDK client for a region.
	newCloudFormationAPI = func(ctx context.Context, region string) (cloudformation.API, error) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return nil, err
		}
		return cfn.NewFromConfig(awsCfg), nil
	}

	// newKubeClient builds the Kubernetes client from a kubeconfig path.
	newKubeClient = func(kubeconfigPath string) (kube.Interface, error) {
		return kube.NewClient(kubeconfigPath)
	}

	// newProvisioningContext creates a new provisioning context.
	newProvisioningContext = provisioning.NewContext
)

// buildContext loads the configuration and wires up the provisioning
// context used by both create and destroy.
func buildContext(ctx context.Context, configPath string) (*provisioning.Context, error) {
	cfg, err := loadConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	api, err := newCloudFormationAPI(ctx, cfg.Region)
	if err != nil {
		return nil, err
	}

	kubeClient, err := newKubeClient(cfg.Kubeconfig)
	if err != nil {
		return nil, err
	}

	return newProvisioningContext(ctx, cfg, cloudformation.NewClient(api), kubeClient), nil
}
