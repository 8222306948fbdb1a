package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"svcwiki/internal/config"
	"svcwiki/internal/telemetry"
)

var exit = os.Exit
var cfgFile string

// closeLog closes the log file opened by initConfig.
var closeLog = func() {}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "svcwiki",
	Short: "Publish service catalogue documentation reports to a wiki",
	Long: `svcwiki reads every service from a service catalogue, grades the quality
of its documentation and publishes one wiki page per service plus an index
page linking them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_file", rootCmd.PersistentFlags().Lookup("log-file"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
		return
	}
	closeLog()
	closeLog = telemetry.InitLogger(telemetry.LoggerOptions{
		Debug:   viper.GetBool("debug"),
		LogFile: viper.GetString("log_file"),
	})
}
