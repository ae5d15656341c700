package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/car-market/internal/config"
	"github.com/pribylovaa/car-market/internal/pkg/log"
)

// cli - общее состояние команд: флаги и зависимости, собранные в PersistentPreRunE.
type cli struct {
	configPath  string
	dumpMetrics bool

	app *app
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "carctl",
		Short:         "Клиент маркетплейса автомобилей",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.teardown(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")
	root.PersistentFlags().BoolVar(&c.dumpMetrics, "dump-metrics", false, "print client metrics to stderr on exit")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.signupCmd(),
		c.meCmd(),
		c.tokenCmd(),
		c.forgotPasswordCmd(),
		c.checkTokenCmd(),
		c.resetPasswordCmd(),
		c.carsCmd(),
		c.adminCmd(),
		c.usersCmd(),
		c.brandsCmd(),
		c.modelsCmd(),
		c.pickCmd(),
	)

	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Env, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	cmd.SetContext(log.Into(cmd.Context(), logger))

	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("app_init_failed", slog.String("err", err.Error()))
		return err
	}
	c.app = a

	logger.Debug("app_initialized",
		slog.String("env", cfg.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("api", cfg.API.BaseURL),
	)

	return nil
}

func (c *cli) teardown(cmd *cobra.Command) error {
	if c.app == nil {
		return nil
	}

	var errs []error
	if c.dumpMetrics {
		errs = append(errs, c.app.dumpMetrics(cmd.ErrOrStderr()))
	}

	if err := c.app.Close(); err != nil {
		c.app.log.Warn("store_close_failed", slog.String("err", err.Error()))
		errs = append(errs, err)
	}
	c.app = nil

	return errors.Join(errs...)
}

// setupLogger - логи в stderr, чтобы stdout оставался под результат команды.
func setupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case config.EnvLocal:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// printJSON печатает v с отступами.
func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}
