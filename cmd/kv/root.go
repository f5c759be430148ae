package kv

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ValentinKolb/kvt/cmd/util"
	"github.com/ValentinKolb/kvt/lib/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	Logger = logger.GetLogger("cli")

	client *util.Client

	// ctx is canceled on interrupt, blocking pops return early
	ctx    context.Context
	cancel context.CancelFunc

	// Commands are the data command groups, each bound to one facade of the template
	Commands = []*cobra.Command{
		ListCommands,
		SetCommands,
		HashCommands,
		ZSetCommands,
		ValueCommands,
		PropsCommands,
		perfTestCmd,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	for _, c := range Commands {
		c.PersistentPreRunE = setupClient
		c.PersistentPostRunE = closeClient
	}
}

// setupClient initializes the loggers, the connection factory and the template
func setupClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()
	if err := common.InitLoggers(config.LogLevel); err != nil {
		return err
	}

	var err error
	client, err = util.NewClient(config)
	if err != nil {
		return err
	}

	ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	Logger.Debugf("connected using %s backend", config.Backend)
	return nil
}

// closeClient persists the memory backend and prints the metrics if requested
func closeClient(_ *cobra.Command, _ []string) error {
	defer cancel()

	if viper.GetBool("metrics") {
		client.Template.WritePrometheus(os.Stderr)
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("could not close client: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Output helpers
// --------------------------------------------------------------------------

func printValue(value string, ok bool) {
	if !ok {
		fmt.Println("(nil)")
		return
	}
	fmt.Printf("%q\n", value)
}

func printValues(values []string) {
	if len(values) == 0 {
		fmt.Println("(empty)")
		return
	}
	for i, v := range values {
		fmt.Printf("%d) %q\n", i+1, v)
	}
}

func printInt(n int64) {
	fmt.Printf("(integer) %d\n", n)
}

func printBool(b bool) {
	if b {
		printInt(1)
	} else {
		printInt(0)
	}
}
