package install

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/matzehuels/stackpkg/pkg/resolve"
	"github.com/matzehuels/stackpkg/pkg/spec"
)

// PostInstallHook runs after a plan with the specs that were installed.
type PostInstallHook func(ctx context.Context, res *resolve.Result, installed []*spec.Spec) error

// Hooks is an ordered registry of post-install hooks. The zero value is
// ready to use.
type Hooks struct {
	mu    sync.RWMutex
	hooks []PostInstallHook
}

// Register appends a hook.
func (h *Hooks) Register(hook PostInstallHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Len returns the number of registered hooks.
func (h *Hooks) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.hooks)
}

// Run calls every hook in registration order. All hooks run; their errors
// are joined.
func (h *Hooks) Run(ctx context.Context, res *resolve.Result, installed []*spec.Spec) error {
	h.mu.RLock()
	hooks := append([]PostInstallHook(nil), h.hooks...)
	h.mu.RUnlock()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx, res, installed); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
