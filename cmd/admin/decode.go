package main

import (
	"encoding/base64"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/address"
	"github.com/coinbase/chainparsers/internal/blockchain/datafield"
)

type decodeOutput struct {
	Function  string                     `json:"function,omitempty"`
	Arguments [][]byte                   `json:"arguments,omitempty"`
	Transfers []*datafield.TransferEvent `json:"transfers"`
}

var (
	decodeFlags struct {
		data         string
		base64       bool
		receiver     string
		pubkeyLength int
	}
)

var (
	decodeCmd = &cobra.Command{
		Use:   "decode",
		Short: "Decode the transfers carried by a data field",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newConfig()
			if err != nil {
				return err
			}

			data := []byte(decodeFlags.data)
			if decodeFlags.base64 {
				data, err = base64.StdEncoding.DecodeString(decodeFlags.data)
				if err != nil {
					return xerrors.Errorf("failed to decode base64 data: %w", err)
				}
			}

			var receiver address.Address
			if decodeFlags.receiver != "" {
				receiver, err = address.Decode(decodeFlags.receiver, cfg.Chain.AddressHrp)
				if err != nil {
					return xerrors.Errorf("failed to decode receiver: %w", err)
				}
			}

			pubkeyLength := decodeFlags.pubkeyLength
			if !cmd.Flags().Changed("pubkey-length") {
				pubkeyLength = int(cfg.Parser.Transfer.PubkeyLength)
			}

			decoder := datafield.NewDecoder(
				datafield.WithAddressLength(pubkeyLength),
				datafield.WithHrp(cfg.Chain.AddressHrp),
			)
			transfers, err := decoder.Decode(data, receiver)
			if err != nil {
				return xerrors.Errorf("failed to decode data field: %w", err)
			}

			output := &decodeOutput{
				Transfers: transfers,
			}
			if function, arguments, err := datafield.ParseCallData(data); err == nil {
				output.Function = function
				output.Arguments = arguments
			}

			return writeOutput(cmd, output)
		},
	}
)

func init() {
	decodeCmd.Flags().StringVar(&decodeFlags.data, "data", "", "data field, e.g. ESDTTransfer@...")
	decodeCmd.Flags().BoolVar(&decodeFlags.base64, "base64", false, "the data field is base64 encoded, as returned by the API")
	decodeCmd.Flags().StringVar(&decodeFlags.receiver, "receiver", "", "bech32 receiver of the transaction, used by single transfers")
	decodeCmd.Flags().IntVar(&decodeFlags.pubkeyLength, "pubkey-length", 0, "expected length of destination addresses; 0 disables the check")
	rootCmd.AddCommand(decodeCmd)
}
