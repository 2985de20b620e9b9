package org

import (
	"context"
	"sync"
)

type commitHooksKey struct{}

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

// WithCommitHooks prepares ctx to collect AfterCommit callbacks. The
// returned finish runs them when committed is true and drops them
// otherwise. A context that already collects hooks is returned as is with
// a no-op finish, so nested transactions defer to the outermost one.
func WithCommitHooks(ctx context.Context) (context.Context, func(committed bool)) {
	if _, ok := ctx.Value(commitHooksKey{}).(*commitHooks); ok {
		return ctx, func(bool) {}
	}
	h := &commitHooks{}
	return context.WithValue(ctx, commitHooksKey{}, h), func(committed bool) {
		h.mu.Lock()
		fns := h.fns
		h.fns = nil
		h.mu.Unlock()
		if !committed {
			return
		}
		for _, fn := range fns {
			fn()
		}
	}
}

// AfterCommit runs fn once the transaction carried by ctx commits. Without
// a transaction fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	h, ok := ctx.Value(commitHooksKey{}).(*commitHooks)
	if !ok {
		fn()
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}
