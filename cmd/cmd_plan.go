package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	planNoColor bool
)

var planCommand = &cobra.Command{
	Use:   "plan",
	Short: "Show the changes apply would make",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(plan())
	},
}

func init() {
	mainCommand.AddCommand(planCommand)
	planCommand.Flags().BoolVar(&planNoColor, "no-color", false, "disable colored output")
}

func plan() int {
	rt := initRuntime()
	changes, err := rt.keeper.Plan(context.Background(), rt.conf.IPSets)
	if err != nil {
		rt.logkit.Error("plan ipsets failed", zap.Error(err))
		return 1
	}
	_, _ = os.Stdout.Write(renderPlan(changes, !planNoColor))
	return 0
}
