package cmd

import (
	"github.com/spf13/cobra"

	"github.com/yacoob/beancount-aib/api"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long:  `Starts the HTTP API server that accepts AIB CSV exports and returns ledger entries.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := api.DefaultConfig()
		if servePort != "" {
			cfg.Port = ":" + servePort
		}

		server := api.New(cfg, logger)
		if err := server.Start(); err != nil {
			logger.Fatal("failed to start server", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "8080", "Port to run the API server on")
}
