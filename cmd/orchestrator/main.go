// cmd/orchestrator/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "orchestrator",
		Short:         "Food-ordering dialogue orchestrator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to a config file (default: configs/config.yaml)")
	flags.String("env", "", "environment overlay, merged from configs/config.<env>.yaml")
	flags.String("store", "", "store driver: memory or postgres")
	flags.String("log-level", "", "log level override")
	_ = v.BindPFlag("store.driver", flags.Lookup("store"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))

	root.AddCommand(newServeCommand(v), newChatCommand(v))
	return root
}
