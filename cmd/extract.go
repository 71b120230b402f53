package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yacoob/beancount-aib/importer"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extracts ledger entries from CSV export(s)",
	Long: `Extracts ledger entries from a given CSV export, or from every CSV
file in a directory. Files are matched against the configured account
map and run through payee cleanup and categorization.`,
	Run: handler,
}

func handler(cmd *cobra.Command, args []string) {
	target := viper.GetString("target")
	if err := importer.ExecuteAgainstPath(target, os.Stdout, logger, viper.GetBool("json")); err != nil {
		logger.Fatal("import failed", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("folder", "f", ".", "File or folder to import")
	extractCmd.Flags().Bool("json", false, "Emit JSON instead of beancount text")
	viper.BindPFlag("target", extractCmd.Flags().Lookup("folder"))
	viper.BindPFlag("json", extractCmd.Flags().Lookup("json"))
}
