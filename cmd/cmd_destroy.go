package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var destroyCommand = &cobra.Command{
	Use:   "destroy {name}",
	Short: "Delete one ipset from firewalld",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(destroy(args[0]))
	},
}

func init() {
	mainCommand.AddCommand(destroyCommand)
}

func destroy(name string) int {
	rt := initRuntime()
	ok, err := rt.keeper.Destroy(context.Background(), name)
	if err != nil {
		rt.logkit.Error("destroy ipset failed", zap.String("ipset", name), zap.Error(err))
		return 1
	}
	if !ok {
		fmt.Printf("ipset %s not found\n", name)
		return 0
	}
	fmt.Printf("ipset %s deleted\n", name)
	return 0
}
