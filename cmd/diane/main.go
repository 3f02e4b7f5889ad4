package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cleberrangel/diane-api/internal/client"
	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var Version = "dev"

const defaultAPIURL = "http://localhost:8080"

// settings são as flags globais
type settings struct {
	apiURL  string
	email   string
	token   string
	verbose bool
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	s := &settings{}

	rootCmd := &cobra.Command{
		Use:           "diane",
		Short:         "Diane - quick capture and task lists from the terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.WarnLevel
			if s.verbose {
				level = zerolog.DebugLevel
			}
			logger.SetOutput(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}, level)
		},
	}

	rootCmd.PersistentFlags().StringVar(&s.apiURL, "api", envOr("DIANE_API_URL", defaultAPIURL), "API base URL")
	rootCmd.PersistentFlags().StringVar(&s.email, "email", os.Getenv("DIANE_EMAIL"), "Login email")
	rootCmd.PersistentFlags().StringVar(&s.token, "token", os.Getenv("DIANE_TOKEN"), "Existing session token (skips login)")
	rootCmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(captureCmd(s))
	rootCmd.AddCommand(tasksCmd(s))
	rootCmd.AddCommand(watchCmd(s))

	return rootCmd
}

// connect devolve um cliente autenticado
func (s *settings) connect(ctx context.Context) (*client.Client, error) {
	if s.token != "" {
		return client.NewClient(s.apiURL, client.WithToken(s.token)), nil
	}
	if s.email == "" {
		return nil, errors.New("no session: pass --email or --token (or set DIANE_EMAIL / DIANE_TOKEN)")
	}

	c := client.NewClient(s.apiURL)
	if _, err := c.Login(ctx, s.email); err != nil {
		return nil, err
	}
	return c, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
