package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

const minTokenBytes = 16

func newTokenCommand() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a random webhook token",
		Long: "Generate a random token for webhook.token. Configure the same value in Overseerr's\n" +
			"webhook Authorization Header.",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := generateToken(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "bytes", 32, "Number of random bytes (hex encoded, so the token is twice as long)")
	return cmd
}

func generateToken(size int) (string, error) {
	if size < minTokenBytes {
		return "", fmt.Errorf("--bytes must be at least %d", minTokenBytes)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
