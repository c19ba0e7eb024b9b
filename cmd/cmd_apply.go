package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var applyCommand = &cobra.Command{
	Use:   "apply",
	Short: "Reconcile firewalld ipsets with the config",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(apply())
	},
}

func init() {
	mainCommand.AddCommand(applyCommand)
}

func apply() int {
	rt := initRuntime()
	changes, err := rt.keeper.Apply(context.Background(), rt.conf.IPSets)
	if len(changes) > 0 {
		_, _ = os.Stdout.Write(renderChanges(changes))
	}
	if err != nil {
		rt.logkit.Error("apply ipsets failed", zap.Error(err))
		return 1
	}
	rt.logkit.Info("apply ipsets succ", zap.Int("ipsets", len(changes)))
	return 0
}
