package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cairnlabs/cairn/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "cairn",
	Short: "Cairn is a phased strategy coaching engine",
	Long: `Cairn runs structured coaching conversations that turn a strategic
challenge into a written strategy brief, one specialist reply at a time.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("store", "file", "Session store backend: memory, file or redis")
	rootCmd.PersistentFlags().String("data-dir", ".cairn", "Directory for file-backed sessions and documents")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address (store=redis)")
	rootCmd.PersistentFlags().String("rules", "", "YAML rules file overriding the built-in signal vocabulary")
	rootCmd.PersistentFlags().String("model", "", "Gemini model for specialist replies (scripted when empty)")
}

// optsFromFlags collects the persistent flags shared by every command.
func optsFromFlags(cmd *cobra.Command) cli.RunOptions {
	debug, _ := cmd.Flags().GetBool("debug")
	store, _ := cmd.Flags().GetString("store")
	dataDir, _ := cmd.Flags().GetString("data-dir")
	redisAddr, _ := cmd.Flags().GetString("redis-addr")
	rules, _ := cmd.Flags().GetString("rules")
	model, _ := cmd.Flags().GetString("model")

	return cli.RunOptions{
		Debug:     debug,
		Store:     store,
		DataDir:   dataDir,
		RedisAddr: redisAddr,
		RulesPath: rules,
		Model:     model,
	}
}
