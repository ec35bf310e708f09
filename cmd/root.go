package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/mcqprep/internal/config"
)

// v holds the resolved settings. Persistent flags are bound into it so a
// flag beats MCQPREP_* environment variables, which beat config.yaml.
var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "mcqprep",
	Short: "Timed multiple-choice exam practice",
	Long: "mcqprep is a terminal quiz for the six exam modules and the review bank.\n" +
		"Sessions are timed, progress is saved on every answer, and an optional\n" +
		"LLM explains answers the question bank does not.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default $XDG_DATA_HOME/mcqprep/config.yaml)")
	flags.String("data-dir", "", "Directory holding moduleN.json / icai_review.json banks")
	flags.String("bank-url", "", "Base URL to fetch question banks from")
	flags.String("db", "", "Path to SQLite database file (overrides MCQPREP_DB)")
	flags.String("store", "", "Session store: sqlite, redis or memory")
	flags.String("redis-addr", "", "Redis address for the redis store")
	flags.String("log-file", "", "Log file path")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("explain-provider", "", "Explanation provider: anthropic, openai, openrouter, gemini or mock (default: detected from API key variables)")

	bindFlags(v, rootCmd, map[string]string{
		"data_dir":         "data-dir",
		"bank_url":         "bank-url",
		"db":               "db",
		"store":            "store",
		"redis_addr":       "redis-addr",
		"log_file":         "log-file",
		"log_level":        "log-level",
		"explain.provider": "explain-provider",
	})

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if f, _ := cmd.Flags().GetString("config"); f != "" {
			v.SetConfigFile(f)
		}
		return nil
	}

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(versionCmd)
}

// bindFlags binds persistent flags to viper keys. Unset flags fall through
// to the environment and config file.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for key, flag := range keys {
		if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err) // flag names are fixed above
		}
	}
}
