package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newNonceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nonce",
		Short: "Request a one-time nonce from the signature service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, false)
			if err != nil {
				return err
			}
			nonce, err := s.client.Nonce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), nonce)
			return nil
		},
	}
}

// signedOutput is the printed form of a signed parameter set.
type signedOutput struct {
	Action    string `json:"action"`
	ClientID  string `json:"client_id"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce,omitempty"`
	Signature string `json:"signature"`
}

func newSignCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sign ACTION",
		Short: "Print signed parameters for ACTION",
		Long: `Print the parameters for a signed request to ACTION.

A fresh nonce is requested first, except for the getnonce action itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.newSession(cmd, false)
			if err != nil {
				return err
			}
			params, err := s.client.Sign(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(signedOutput{
				Action:    params.Action,
				ClientID:  params.ClientID,
				Timestamp: params.Timestamp,
				Nonce:     params.Nonce,
				Signature: params.Signature,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
