// Command digest summarizes a web article from the command line or serves
// the digest web page and JSON API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; real environment variables take precedence
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "digest",
		Short:         "Extract and summarize web articles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(summarizeCmd(), serveCmd())
	return root
}

// version returns the application version from environment or default.
func version() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	return "dev"
}
