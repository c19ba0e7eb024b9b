package main

import (
	"fmt"
	"log"
	"os"

	ipsetkeeper "ipset-keeper"
	"ipset-keeper/config"
	"ipset-keeper/firewallcmd"

	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"go.uber.org/zap"
)

var (
	paramConfig string
)

var mainCommand = &cobra.Command{
	Use:   "ipset-keeper",
	Short: "Keep firewalld ipsets in the declared state",
}

func init() {
	mainCommand.PersistentFlags().StringVarP(&paramConfig, "config", "c", "./config.json", "config file (json or yaml)")
}

func main() {
	if err := mainCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runtime struct {
	conf   *config.Config
	keeper *ipsetkeeper.IPSetKeeper
	logkit *zap.Logger
}

func initRuntime() *runtime {
	c, err := config.Parse(paramConfig)
	if err != nil {
		log.Fatalf("parse config failed, err:%v", err)
	}
	logkit := logger.Init(c.LogConfig.File, c.LogConfig.Level, int(c.LogConfig.FileCount), int(c.LogConfig.FileSize), int(c.LogConfig.KeepDays), c.LogConfig.Console)
	logkit.Debug("config init succ", zap.String("config", paramConfig), zap.Int("ipsets", len(c.IPSets)))
	runner, err := firewallcmd.NewExecRunner(c.FirewallCmd)
	if err != nil {
		logkit.Fatal("init firewall-cmd runner failed", zap.Error(err))
	}
	cli := firewallcmd.New(runner,
		firewallcmd.WithPermanentConfig(c.Permanent),
		firewallcmd.WithTmpDir(c.TmpDir),
	)
	keeper, err := ipsetkeeper.New(
		ipsetkeeper.WithClient(cli),
		ipsetkeeper.WithReloadOnChange(c.ReloadOnChange),
	)
	if err != nil {
		logkit.Fatal("init keeper failed", zap.Error(err))
	}
	return &runtime{conf: c, keeper: keeper, logkit: logkit}
}
