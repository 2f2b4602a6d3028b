/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/acronis/go-crptapi/internal/libinfo"
)

// envVarsPrefix is the prefix of environment variables overriding configuration values
// (e.g. CRPT_API_RATELIMIT_LIMIT=20, CRPT_LOG_LEVEL=debug).
const envVarsPrefix = "CRPT"

// apiCfgKeyPrefix is the configuration section of the registration API client.
const apiCfgKeyPrefix = "api"

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "crptclient",
		Short:         "Rate-limited client for the CRPT document registration API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newSubmitCommand(), newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	var extended bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "crptclient %s\n", libinfo.GetLibVersion())
			if extended {
				_, _ = fmt.Fprintf(out, "Go: %s\n", runtime.Version())
				_, _ = fmt.Fprintf(out, "User-Agent: %s\n", libinfo.UserAgent())
			}
			return nil
		},
	}
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
	return versionCmd
}
