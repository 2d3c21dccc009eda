package main

import (
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/address"
	"github.com/coinbase/chainparsers/internal/blockchain/datafield"
)

type encodeOutput struct {
	Data   string `json:"data"`
	Base64 string `json:"base64"`
}

var (
	encodeFlags struct {
		selector  string
		transfers []string
		function  string
		arguments []string
	}
)

var (
	encodeCmd = &cobra.Command{
		Use:   "encode",
		Short: "Build a transfer data field",
		Example: `  admin encode --selector ESDTTransfer --transfer WEGLD-bd4d79:0:1000000000000000000
  admin encode --selector MultiESDTNFTTransfer --transfer WEGLD-bd4d79:0:10:erd1... --transfer MEX-455c57:5:1:erd1...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newConfig()
			if err != nil {
				return err
			}

			if !datafield.IsTransferSelector(encodeFlags.selector) {
				return xerrors.Errorf("unknown selector %q, expected one of %v", encodeFlags.selector, datafield.Selectors())
			}

			events := make([]*datafield.TransferEvent, len(encodeFlags.transfers))
			for i, transfer := range encodeFlags.transfers {
				events[i], err = parseTransferFlag(transfer, cfg.Chain.AddressHrp)
				if err != nil {
					return xerrors.Errorf("failed to parse transfer %q: %w", transfer, err)
				}
			}

			var callArguments [][]byte
			if encodeFlags.function != "" {
				callArguments = append(callArguments, []byte(encodeFlags.function))
				for _, argument := range encodeFlags.arguments {
					decoded, err := hex.DecodeString(argument)
					if err != nil {
						return xerrors.Errorf("argument %q is not hex: %w", argument, err)
					}
					callArguments = append(callArguments, decoded)
				}
			}

			data, err := encodeTransfers(encodeFlags.selector, events, callArguments)
			if err != nil {
				return err
			}

			return writeOutput(cmd, &encodeOutput{
				Data:   string(data),
				Base64: base64.StdEncoding.EncodeToString(data),
			})
		},
	}
)

func init() {
	encodeCmd.Flags().StringVar(&encodeFlags.selector, "selector", datafield.SelectorESDTTransfer, "transfer selector")
	encodeCmd.Flags().StringArrayVar(&encodeFlags.transfers, "transfer", nil, "token movement as TOKEN:NONCE:AMOUNT[:RECEIVER]")
	encodeCmd.Flags().StringVar(&encodeFlags.function, "function", "", "contract function called after the transfer")
	encodeCmd.Flags().StringArrayVar(&encodeFlags.arguments, "argument", nil, "hex encoded argument of the function")
	rootCmd.AddCommand(encodeCmd)
}

func encodeTransfers(selector string, events []*datafield.TransferEvent, callArguments [][]byte) ([]byte, error) {
	if len(events) == 0 {
		return nil, xerrors.New("at least one transfer is required")
	}

	if selector == datafield.SelectorMultiESDTNFTTransfer {
		for _, event := range events {
			if event.Receiver.IsEmpty() {
				return nil, xerrors.Errorf("%v requires a receiver for every transfer", selector)
			}
		}

		return datafield.EncodeMultiTransfer(events, callArguments...), nil
	}

	if len(events) != 1 {
		return nil, xerrors.Errorf("%v carries exactly one transfer, got %d", selector, len(events))
	}

	if selector == datafield.SelectorESDTTransfer && events[0].Nonce != 0 {
		return nil, xerrors.Errorf("%v cannot carry a nonce", selector)
	}

	builder := datafield.NewBuilder(selector).Transfer(events[0])
	for _, argument := range callArguments {
		builder.ArgBytes(argument)
	}

	return builder.Build(), nil
}

func parseTransferFlag(value string, hrp string) (*datafield.TransferEvent, error) {
	parts := strings.Split(value, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return nil, xerrors.New("expected TOKEN:NONCE:AMOUNT[:RECEIVER]")
	}

	nonce, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return nil, xerrors.Errorf("invalid nonce: %w", err)
	}

	amount, err := datafield.ParseDecimalAmount(parts[2])
	if err != nil {
		return nil, err
	}

	event := &datafield.TransferEvent{
		TokenIdentifier: parts[0],
		Nonce:           nonce,
		Amount:          amount,
	}

	if len(parts) == 4 {
		event.Receiver, err = address.Decode(parts[3], hrp)
		if err != nil {
			return nil, xerrors.Errorf("invalid receiver: %w", err)
		}
	}

	return event, nil
}
