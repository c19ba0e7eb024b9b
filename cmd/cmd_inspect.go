package main

import (
	"os"

	"ipset-keeper/kernelset"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var inspectCommand = &cobra.Command{
	Use:   "inspect {name}",
	Short: "Show the kernel view of an ipset",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(inspect(args[0]))
	},
}

func init() {
	mainCommand.AddCommand(inspectCommand)
}

func inspect(name string) int {
	rt := initRuntime()
	ks, err := kernelset.New().Inspect(name)
	if err != nil {
		rt.logkit.Error("inspect kernel ipset failed", zap.String("ipset", name), zap.Error(err))
		return 1
	}
	_, _ = os.Stdout.Write(renderKernelSet(ks))
	return 0
}
