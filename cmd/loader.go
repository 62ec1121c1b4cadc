package cmd

import (
	"github.com/aleph-zero/flutterstack/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loaderCmd = &cobra.Command{
	Use:   "load",
	Short: "Bulk load values onto a stack",
	Long:  "Bulk push integers from a file (JSON array or stream of numbers) onto a remote stack",
	Run: func(cmd *cobra.Command, args []string) {
		config := client.NewLoaderConfig(
			client.WithClientConfig(clientConfig()),
			client.WithStack(viper.GetString("client.load.stack")),
			client.WithFilename(viper.GetString("client.load.file")),
			client.WithBatchSize(viper.GetInt("client.load.batch-size")))
		client.BootstrapLoader(config)
	},
}

func init() {
	clientCmd.AddCommand(loaderCmd)
	loaderCmd.Flags().String("client.load.stack", "", "Stack id (a new stack is created when empty)")
	loaderCmd.Flags().String("client.load.file", "", "File of values to push")
	loaderCmd.Flags().Int("client.load.batch-size", 3000, "Values per push request")

	viper.BindPFlag("client.load.stack", loaderCmd.Flags().Lookup("client.load.stack"))
	viper.BindPFlag("client.load.file", loaderCmd.Flags().Lookup("client.load.file"))
	viper.BindPFlag("client.load.batch-size", loaderCmd.Flags().Lookup("client.load.batch-size"))
}
