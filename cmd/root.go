package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration, used when no config file is found. It
// intentionally maps no accounts: every file will be reported as
// unidentified until the user lists their AIB account numbers.
const defaultConfigYAML = `
currency: EUR
accounts:
# Map the account identifier from the CSV's first column to a ledger
# account, eg.:
#   "93311112345678": Assets:AIB:Checking

# Drop incoming transactions older than the latest already-imported one,
# minus this many days. Leave unset to keep everything.
# cutoff_days: 3

# Ordered list of categories; the first match wins.
categories: []
# categories:
#   - account: Expenses:Groceries
#     keywords: [tesco, lidl, dunnes]
#   - account: Expenses:Restaurants
#     keywords: [zaytoon]
`

var (
	cfgFile string
	verbose bool
	logger  = log.New(os.Stderr)

	rootCmd = &cobra.Command{
		Use:   "beancount-aib [filename]",
		Short: "Import AIB CSV exports into a beancount-style journal",
		Long: `beancount-aib turns AIB current account and credit card CSV exports
into plain-text ledger entries: payees are cleaned up by a rule table,
structured facts land in tags and metadata, and categorization appends
balancing postings.`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				viper.Set("target", args[0])
				handler(extractCmd, []string{})
				return
			}
			cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.beancount-aib.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Add config paths in order of priority
		viper.AddConfigPath(".")  // First check current directory
		viper.AddConfigPath(home) // Then check home directory
		viper.SetConfigName(".beancount-aib")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, use embedded default configuration
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Printf("Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
