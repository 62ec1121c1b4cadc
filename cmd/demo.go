package cmd

import (
	"github.com/aleph-zero/flutterstack/demo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log/slog"
	"os"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the stack demonstration",
	Long:  "Build stacks from raw values and iterator ranges and print each traversal",
	RunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(viper.GetString("demo.log-level"))); err != nil {
			return err
		}
		logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return demo.Run(cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().String("demo.log-level", "info", "Log level (debug, info, warn, error)")

	viper.BindPFlag("demo.log-level", demoCmd.Flags().Lookup("demo.log-level"))
}
