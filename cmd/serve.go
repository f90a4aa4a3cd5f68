package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/reliefdash/internal/dashboard"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	servePreload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		prep := newPreparer(c)
		if servePreload {
			if _, err := prep.Prepare(ctx); err != nil {
				return err
			}
		}
		srv := dashboard.New(prep, dashboard.Options{
			PreviewRows: c.PreviewRows,
			Charts:      chartOptions(c, "png"),
		}, logger)
		defer func() { _ = logger.Sync() }()
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config listen_addr)")
	serveCmd.Flags().BoolVar(&servePreload, "preload", false, "fetch and prepare the dataset before listening")
}
