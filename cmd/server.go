package cmd

import (
    "github.com/aleph-zero/flutterstack/server"
    "github.com/aleph-zero/flutterstack/service/registry"
    "github.com/spf13/cobra"
    "github.com/spf13/viper"
)

var serverCmd = &cobra.Command{
    Use:   "server",
    Short: "Run a flutterstack server",
    Long:  "Run a flutterstack server exposing the stack registry over HTTP",
    Run: func(cmd *cobra.Command, args []string) {
        config := server.NewConfig(
            server.WithAddress(viper.GetString("server.addr")),
            server.WithPort(viper.GetUint16("server.port")),
            server.WithRegistryConfig(registry.NewConfig(
                registry.WithDirectory(viper.GetString("registry.data-dir")),
                registry.WithMaxLength(viper.GetInt("registry.max-length")))))
        server.Bootstrap(config)
    },
}

const (
    apiListenAddr   = "0.0.0.0"
    apiListenPort   = 1234
    registryDataDir = ".registry"
)

func init() {
    rootCmd.AddCommand(serverCmd)

    serverCmd.PersistentFlags().String("server.addr", apiListenAddr, "Address to bind to")
    serverCmd.PersistentFlags().Uint16("server.port", apiListenPort, "Port to listen on")
    serverCmd.PersistentFlags().String("registry.data-dir", registryDataDir, "Data directory for persisted stacks")
    serverCmd.PersistentFlags().Int("registry.max-length", registry.DefaultMaxLength, "Maximum length of a registered stack")

    viper.BindPFlag("server.addr", serverCmd.PersistentFlags().Lookup("server.addr"))
    viper.BindPFlag("server.port", serverCmd.PersistentFlags().Lookup("server.port"))
    viper.BindPFlag("registry.data-dir", serverCmd.PersistentFlags().Lookup("registry.data-dir"))
    viper.BindPFlag("registry.max-length", serverCmd.PersistentFlags().Lookup("registry.max-length"))
}
