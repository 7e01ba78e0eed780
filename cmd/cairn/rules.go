package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cairnlabs/cairn/pkg/signal"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with signal rules files",
}

var rulesInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the built-in signal vocabulary as a starter rules file",
	Long: `Dumps the default signal table as YAML so it can be customized and
passed back with --rules. Categories left out of the edited file keep
their built-in patterns.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "rules.yaml"
		if len(args) > 0 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			fmt.Printf("'%s' already exists. Use --force to overwrite.\n", path)
			os.Exit(1)
		}

		data, err := yaml.Marshal(signal.DefaultTable())
		if err != nil {
			fmt.Printf("Error encoding rules: %v\n", err)
			os.Exit(1)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			fmt.Printf("Error writing '%s': %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote starter rules to %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesInitCmd)

	rulesInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
