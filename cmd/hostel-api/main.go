package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title Hostel API
// @version 1.0
// @description Hostel management API: JWT authentication, password recovery, users, rooms and feedback.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hostel-api",
		Short:         "Reference hostel API server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newSeedCmd())
	return root
}
