// Command missionctl is a terminal participant client for the mission desk API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"mission-desk/internal/client"
	"mission-desk/internal/config"
	"mission-desk/internal/logger"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "missionctl",
		Short:        "Participant client for the mission desk",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := viperForCmd(cmd)
			return logger.Initialize(config.LoggerConfig{
				Level: v.GetString("log-level"),
				File:  v.GetString("log-file"),
			})
		},
	}

	f := root.PersistentFlags()
	f.String("server", "http://localhost:8090", "Mission desk API base URL")
	f.StringP("participant", "p", "", "Participant ID (or set MISSIONCTL_PARTICIPANT)")
	f.String("password", "", "Password (or set MISSIONCTL_PASSWORD)")
	f.String("timezone", "Local", "Time zone of due dates typed without an offset")
	f.Duration("timeout", 3*time.Minute, "Overall timeout of one command")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-file", "", "Also write JSON logs to this rotated file")

	root.AddCommand(examCmd(), answerCmd(), planCmd(), reportCmd(), slotsCmd())
	return root
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	_ = v.BindPFlags(cmd.InheritedFlags())

	v.SetEnvPrefix("MISSIONCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// runtime is what every subcommand needs once logged in.
type runtime struct {
	v       *viper.Viper
	api     *client.API
	session *client.Session
	loc     *time.Location
}

// withSession logs in, runs fn and logs out. Ctrl-C ends the session and aborts the request in flight.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime) error) error {
	v := viperForCmd(cmd)
	participant, password := v.GetString("participant"), v.GetString("password")
	if participant == "" || password == "" {
		return errors.New("participant and password are required")
	}
	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("timeout"))
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.NewAPI(v.GetString("server"))
	session, err := api.Login(ctx, participant, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	session.OnAuthFailure(func() {
		fmt.Fprintln(cmd.ErrOrStderr(), "The server rejected the session token; log in again.")
	})
	session.OnInvalidate(func() {
		logger.Get().Debug("Session ended", zap.String("accountID", session.AccountID))
	})
	go func() {
		<-ctx.Done()
		session.Invalidate()
	}()
	defer func() {
		if session.Valid() {
			_ = api.Logout(context.Background(), session)
		}
	}()

	return fn(ctx, &runtime{v: v, api: api, session: session, loc: loc})
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
