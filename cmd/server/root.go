package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "watchledger",
	Short: "Watch catalog backend with AI-generated descriptions",
	Long: `watchledger serves the watch catalog API: listings, model references,
prompts and style guides, plus description generation through Claude or GPT-4o
and a reconciliation job that backfills missing references from listings.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			os.Setenv("CONFIG_PATH", cfgFile)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $CONFIG_PATH or ./config.yaml)")

	// klog 的 -v 等参数
	fs := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(fs)
	rootCmd.PersistentFlags().AddGoFlagSet(fs)
}
