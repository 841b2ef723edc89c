package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/padraicbc/mikerp/config"
	mw "github.com/padraicbc/mikerp/middleware"
)

func newTokenCommand(stdout io.Writer) *cobra.Command {
	var sub string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a read API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadRP()
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET required")
			}
			tok, err := mw.IssueToken([]byte(cfg.JWTSecret), sub, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, tok)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sub, "sub", "", "Operator the token is issued to.")
	flags.DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime.")
	_ = cmd.MarkFlagRequired("sub")
	return cmd
}
