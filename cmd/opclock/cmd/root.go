package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opclock/opclock/pkg/logging"
)

var (
	cfgFile  string
	logLevel string
	logJSON  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "opclock",
	Short: "In-process timing instrumentation",
	Long: `opclock collects named timings for an application's own operations.
The bench command times a configured set of operations and renders a
report; the serve command exposes collected timings for scraping.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.opclock/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(filepath.Join(home, ".opclock"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("OPCLOCK")
	viper.AutomaticEnv()

	viper.SetDefault("listen", ":9182")
	viper.SetDefault("rate_limit_rps", 5.0)
	viper.SetDefault("rate_limit_burst", 10)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_json", false)
	viper.SetDefault("bench.iterations", 3)

	// Missing config file is fine; flags and defaults cover everything
	_ = viper.ReadInConfig()
}

// newLogger builds the logger from flags, falling back to config values
func newLogger() *logging.Logger {
	level := logLevel
	if level == "" {
		level = viper.GetString("log_level")
	}
	jsonFormat := logJSON || viper.GetBool("log_json")
	return logging.NewLogger(logging.ParseLevel(level), jsonFormat)
}
