// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsShutdownTimeout = 5 * time.Second

// serveMetrics serves the node registry until done is closed or ctx is
// cancelled
func (n *Node) serveMetrics(ctx context.Context, done <-chan struct{}) error {
	addr := net.JoinHostPort(
		n.config.BindAddr,
		fmt.Sprintf("%d", n.config.MetricsPort),
	)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(n.promRegistry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	n.logger.Info(
		"serving prometheus metrics on "+addr,
		"component", "node",
	)
	errCh := make(chan error, 1)
	go func() {
		errCh <- metricsServer.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start metrics listener: %w", err)
	case <-done:
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		metricsShutdownTimeout,
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}
