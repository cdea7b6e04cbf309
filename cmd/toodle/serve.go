package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/toodle/bridge"
	"pkt.systems/toodle/internal/appconfig"
	"pkt.systems/toodle/internal/metrics"
	"pkt.systems/toodle/toodle"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the protocol bridge over stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return err
			}

			var bridgeMetrics *metrics.Bridge
			if cfg.Metrics.Addr != "" {
				bridgeMetrics = metrics.NewBridge()
				go func() {
					if err := bridgeMetrics.Serve(ctx, cfg.Metrics.Addr, logger); err != nil {
						logger.Warn("metrics listener failed", "err", err)
					}
				}()
			}

			table := bridge.NewTable()
			deps := bridge.Deps{
				Logger:  logger,
				Metrics: bridgeMetrics,
				Open: func(uri string) (*toodle.Toodle, error) {
					return toodle.NewWithLogger(resolveStoreURI(cfg.DataDir, uri), logger)
				},
			}

			logger.Info("bridge serve", "data_dir", cfg.DataDir)
			err = bridge.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), table, deps)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config.yaml")
	return cmd
}

// resolveStoreURI anchors bare relative store paths in the data
// directory. Absolute paths, file: URIs, and :memory: pass through.
func resolveStoreURI(dataDir, uri string) string {
	if uri == "" || uri == ":memory:" || strings.HasPrefix(uri, "file:") || filepath.IsAbs(uri) {
		return uri
	}
	return filepath.Join(dataDir, uri)
}
