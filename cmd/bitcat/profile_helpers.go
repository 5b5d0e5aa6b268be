package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bitcat/internal/prof"
)

// startProfiling reads --cpu-profile and --mem-profile. The returned
// session must be stopped by the caller.
func startProfiling(cmd *cobra.Command) (*prof.Session, error) {
	root := cmd.Root()
	cpuProfile, err := root.PersistentFlags().GetString("cpu-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	memProfile, err := root.PersistentFlags().GetString("mem-profile")
	if err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	return prof.Start(prof.Options{CPU: cpuProfile, Mem: memProfile})
}
