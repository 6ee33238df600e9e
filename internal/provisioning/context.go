package provisioning

import (
	"context"

	"github.com/headline-1/alpha-k8s/internal/config"
	"github.com/headline-1/alpha-k8s/internal/platform/cloudformation"
	"github.com/headline-1/alpha-k8s/internal/platform/kube"
)

// Context wraps all dependencies needed by a provisioning flow.
type Context struct {
	context.Context
	Config   *config.Config
	Timeouts *config.Timeouts
	CFN      *cloudformation.Client
	Poller   *cloudformation.Poller
	Kube     kube.Interface
	Observer Observer
}

// NewContext creates a new provisioning context. The convergence poller is
// wired to the observer so stack activity surfaces as provisioning events.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	cfnClient *cloudformation.Client,
	kubeClient kube.Interface,
) *Context {
	observer := NewConsoleObserver()
	timeouts := config.LoadTimeouts()
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Timeouts: timeouts,
		CFN:      cfnClient,
		Poller:   cloudformation.NewPoller(cfnClient, timeouts.PollInterval, StackEventAdapter{Observer: observer}),
		Kube:     kubeClient,
		Observer: observer,
	}
}
