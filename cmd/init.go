package cmd

import (
	"fmt"

	"github.com/nikogura/job-tracker/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default configuration file.

The file is written to --config when given, else to $HOME/.job-tracker/config.yaml.
An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	var path string
	path, err = config.InitConfig(getConfigFile())
	if err != nil {
		return err
	}

	fmt.Printf("Created config file: %s\n", path)
	fmt.Println("Set your API key in the file or via GOOGLE_API_KEY, then run 'job-tracker serve'.")
	return err
}
