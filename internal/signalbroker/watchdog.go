// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/barline/internal/ctxlog"
)

// Watch cancels the context on the first signal received on sigCh.
// It returns after cancelling, when sigCh is closed, or when ctx is done.
func Watch(ctx context.Context, sigCh <-chan os.Signal, cancel context.CancelFunc) {
	select {
	case sig, ok := <-sigCh:
		if !ok {
			return
		}

		ctxlog.Logger(ctx).Info("watchdog", "detail", "received signal, stopping items", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}
}
