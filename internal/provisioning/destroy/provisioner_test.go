package destroy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cfn "github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/headline-1/alpha-k8s/internal/config"
	"github.com/headline-1/alpha-k8s/internal/platform/cloudformation"
	"github.com/headline-1/alpha-k8s/internal/platform/kube"
	"github.com/headline-1/alpha-k8s/internal/provisioning"
	"github.com/headline-1/alpha-k8s/internal/provisioning/namespace"
)

// fakeCFN scripts a single converged stack.
type fakeCFN struct {
	created bool
	deleted bool
	outputs []cfntypes.Output
}

func (f *fakeCFN) CreateStack(_ context.Context, params *cfn.CreateStackInput, _ ...func(*cfn.Options)) (*cfn.CreateStackOutput, error) {
	f.created = true
	return &cfn.CreateStackOutput{StackId: aws.String("arn:stack/" + aws.ToString(params.StackName))}, nil
}

func (f *fakeCFN) DescribeStacks(_ context.Context, params *cfn.DescribeStacksInput, _ ...func(*cfn.Options)) (*cfn.DescribeStacksOutput, error) {
	if !f.created || f.deleted {
		return nil, &smithy.GenericAPIError{
			Code:    "ValidationError",
			Message: fmt.Sprintf("Stack with id %s does not exist", aws.ToString(params.StackName)),
		}
	}
	return &cfn.DescribeStacksOutput{Stacks: []cfntypes.Stack{{
		StackStatus: cfntypes.StackStatusCreateComplete,
		Outputs:     f.outputs,
	}}}, nil
}

func (f *fakeCFN) DescribeStackEvents(_ context.Context, _ *cfn.DescribeStackEventsInput, _ ...func(*cfn.Options)) (*cfn.DescribeStackEventsOutput, error) {
	return &cfn.DescribeStackEventsOutput{}, nil
}

func (f *fakeCFN) DeleteStack(_ context.Context, _ *cfn.DeleteStackInput, _ ...func(*cfn.Options)) (*cfn.DeleteStackOutput, error) {
	f.deleted = true
	return &cfn.DeleteStackOutput{}, nil
}

func testContext(t *testing.T, cfnAPI cloudformation.API, kubeClient kube.Interface) *provisioning.Context {
	t.Helper()
	client := cloudformation.NewClient(cfnAPI)
	return &provisioning.Context{
		Context:  context.Background(),
		Config:   &config.Config{ClusterName: "test", Region: "eu-west-1"},
		Timeouts: &config.Timeouts{PollInterval: time.Millisecond, StackCreate: time.Minute, StackDelete: time.Minute},
		CFN:      client,
		Poller:   cloudformation.NewPoller(client, time.Millisecond, nil),
		Kube:     kubeClient,
		Observer: provisioning.NewConsoleObserver(),
	}
}

func TestProvision_RemovesProvisionedNamespace(t *testing.T) {
	t.Parallel()
	cfnAPI := &fakeCFN{outputs: []cfntypes.Output{
		{OutputKey: aws.String(namespace.OutputAdminRole), OutputValue: aws.String("arn:admin")},
		{OutputKey: aws.String(namespace.OutputDeploymentsRole), OutputValue: aws.String("arn:deploy")},
	}}
	clientset := fake.NewClientset()
	kubeClient := kube.NewClientForClientset(clientset)
	pctx := testContext(t, cfnAPI, kubeClient)

	require.NoError(t, namespace.NewProvisioner().Provision(pctx, "team-a"))
	require.True(t, cfnAPI.created)

	err := NewProvisioner().Provision(pctx, "team-a")

	require.NoError(t, err)
	assert.True(t, cfnAPI.deleted)

	ctx := context.Background()
	_, nsErr := clientset.CoreV1().Namespaces().Get(ctx, "team-a", metav1.GetOptions{})
	assert.Error(t, nsErr)

	roles, err := clientset.RbacV1().Roles("team-a").List(ctx, metav1.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, roles.Items)

	mappings, err := kubeClient.ReadRoleMappings(ctx)
	require.NoError(t, err)
	assert.Empty(t, mappings)
}

func TestProvision_ToleratesMissingStack(t *testing.T) {
	t.Parallel()
	cfnAPI := &fakeCFN{}
	pctx := testContext(t, cfnAPI, kube.NewClientForClientset(fake.NewClientset()))

	err := NewProvisioner().Provision(pctx, "team-a")

	require.NoError(t, err)
}

func TestProvision_InvalidName(t *testing.T) {
	t.Parallel()
	pctx := testContext(t, &fakeCFN{}, kube.NewClientForClientset(fake.NewClientset()))

	err := NewProvisioner().Provision(pctx, "kube-system")

	require.Error(t, err)
	var ve *provisioning.ValidationError
	assert.ErrorAs(t, err, &ve)
}
