package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/watchledger/backend/internal/handler"
	"github.com/watchledger/backend/internal/router"
	"github.com/watchledger/backend/internal/service"
	"k8s.io/klog/v2"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		port := a.cfg.Server.Port
		if servePort != "" {
			port = servePort
		}

		r := router.Setup(a.cfg, a.metrics,
			handler.NewGenerationHandler(a.generation, a.reconcile),
			handler.NewWatchHandler(service.NewWatchService(a.watchRepo), a.gate, a.generation),
			handler.NewReferenceHandler(service.NewReferenceService(a.referenceRepo, a.bus)),
			handler.NewPromptHandler(service.NewPromptService(a.promptRepo, a.guideRepo, a.bus)),
			handler.NewGenerationLogHandler(a.logs),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			klog.Infof("Server starting on port %s...", port)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		klog.Infof("服务关闭中...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
