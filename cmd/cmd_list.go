package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var listCommand = &cobra.Command{
	Use:   "list",
	Short: "List ipsets known to firewalld",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(list())
	},
}

func init() {
	mainCommand.AddCommand(listCommand)
}

func list() int {
	rt := initRuntime()
	states, err := rt.keeper.List(context.Background())
	if err != nil {
		rt.logkit.Error("list ipsets failed", zap.Error(err))
		return 1
	}
	_, _ = os.Stdout.Write(renderStates(states))
	return 0
}
