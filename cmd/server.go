/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/taskdesk/apiserver/config"
	"github.com/taskdesk/apiserver/internal/server"
	"go.uber.org/zap"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the delegation backend server",
	Long: `Starts the delegation backend server. Usage:

	apiserver server
`,
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := zap.NewProduction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()

		cfg := config.LoadConfig()

		srv, err := server.New(cmd.Context(), cfg, logger)
		if err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
