package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thesyncim/mediaplug/host"
)

func newSelectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Initialize the preferred or first working backend and print its name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.selectBackend()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}

func newPlayCommand(a *app) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "play <url>",
		Short: "Play a URL through the selected backend until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.selectBackend()
			if err != nil {
				return err
			}

			t, ok := a.types.ForEngine(name)
			if !ok {
				return backendError(fmt.Errorf("%s: %w", name, host.ErrUnknownType))
			}
			player, err := a.types.NewPlayer(t.Name)
			if err != nil {
				return fmt.Errorf("create %s: %w", t.Name, err)
			}
			defer player.Close()

			if err := player.Load(args[0]); err != nil {
				return err
			}
			if err := player.Play(); err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"backend": name, "url": args[0]}).Info("Playing")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			<-ctx.Done()

			return player.Stop()
		},
	}
	cmd.Flags().DurationVar(&duration, "for", 0, "stop after this long (0 plays until interrupted)")
	return cmd
}
