package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/config"
	applog "budget/internal/log"
	"budget/internal/services"
	"budget/internal/storage"
)

// appContext is the dependency graph shared by subcommands.
type appContext struct {
	cfg    *config.Config
	logger *applog.Logger
	store  *storage.Store
}

type rootOptions struct {
	configPath string
	dataFile   string
	logLevel   string

	// logOutput overrides where logs go; stderr when nil.
	logOutput io.Writer

	app *appContext
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "budget",
		Short:        "Personal expense tracker",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default $BUDGET_CONFIG)")
	root.PersistentFlags().StringVarP(&opts.dataFile, "file", "f", "", "expense store path (default $BUDGET_DATA_FILE or expenses.json next to the binary)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		addCmd(opts),
		listCmd(opts),
		summaryCmd(opts),
		infoCmd(opts),
		serveCmd(opts),
		exportCmd(opts),
		watchCmd(opts),
	)
	return root
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(o.configPath, func(c *config.Config) {
		if o.dataFile != "" {
			c.DataFile = o.dataFile
		}
		if o.logLevel != "" {
			c.LogLevel = o.logLevel
		}
	})
	if err != nil {
		return err
	}

	out := o.logOutput
	if out == nil {
		out = cmd.ErrOrStderr()
	}
	logger := cli.SetupLogger(cfg, out)

	o.app = &appContext{
		cfg:    cfg,
		logger: logger,
		store:  storage.NewStore(cfg.DataFile, logger),
	}
	return nil
}

// newService builds the expense service. With events set and AMQP
// configured, appended expenses are also published; an unreachable broker
// is logged and publishing is skipped.
func (o *rootOptions) newService(events bool) *services.ExpenseService {
	app := o.app
	var publisher services.Publisher
	if events && app.cfg.AMQPURL != "" {
		client, err := amqp.NewClient(app.cfg.AMQPURL, app.cfg.AMQPExchange, app.cfg.AMQPQueue, app.logger)
		if err != nil {
			app.logger.Warn("AMQP unavailable, expense events disabled",
				applog.NewFields().WithError(err).WithOperation(applog.OpStartup).ToSlice()...)
		} else {
			publisher = client
		}
	}
	return services.NewExpenseService(app.store, publisher, app.logger)
}

// printWarning surfaces a store reset to the user.
func printWarning(w io.Writer, warning error) {
	if warning != nil {
		fmt.Fprintf(w, "warning: JSON file invalid: %v. Resetting file.\n", warning)
	}
}

// commandContext is the base context for a command run.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
