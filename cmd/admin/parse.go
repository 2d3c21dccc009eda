package main

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/internal/blockchain/parser"
)

var (
	parseFlags struct {
		kind            string
		in              string
		minGasLimit     uint64
		gasLimitPerByte uint64
		pubkeyLength    uint32
	}
)

var (
	parseCmd = &cobra.Command{
		Use:   "parse",
		Short: "Parse a raw record, or an array of raw records, from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parser.ParseKind(parseFlags.kind)
			if err != nil {
				return xerrors.Errorf("failed to parse kind: %w", err)
			}

			data, err := os.ReadFile(parseFlags.in)
			if err != nil {
				return xerrors.Errorf("failed to read input file: %w", err)
			}

			records, isArray, err := unmarshalRecords(kind, data)
			if err != nil {
				return xerrors.Errorf("failed to unmarshal records: %w", err)
			}

			var deps struct {
				fx.In
				Registry parser.Registry
			}

			app, err := startApp(
				parser.Module,
				fx.Populate(&deps),
			)
			if err != nil {
				return err
			}
			defer app.Close()

			cfg, err := parser.DefaultParserConfig(app.Config(), kind)
			if err != nil {
				return xerrors.Errorf("failed to get parser config: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("min-gas-limit") {
				cfg.MinGasLimit = parseFlags.minGasLimit
			}
			if flags.Changed("gas-limit-per-byte") {
				cfg.GasLimitPerByte = parseFlags.gasLimitPerByte
			}
			if flags.Changed("pubkey-length") {
				cfg.PubkeyLength = parseFlags.pubkeyLength
			}

			handle, err := deps.Registry.Create(kind, cfg)
			if err != nil {
				return xerrors.Errorf("failed to create %v parser: %w", kind, err)
			}
			defer deps.Registry.Dispose(handle)

			results, err := deps.Registry.ParseBatch(cmd.Context(), handle, records)
			if err != nil {
				return xerrors.Errorf("failed to parse records: %w", err)
			}

			logger.Info(
				"parsed records",
				zap.String("kind", string(kind)),
				zap.Int("count", len(results)),
				zap.Reflect("config", cfg),
			)

			if !isArray {
				return writeOutput(cmd, results[0])
			}

			return writeOutput(cmd, results)
		},
	}
)

func init() {
	parseCmd.Flags().StringVar(&parseFlags.kind, "kind", string(parser.KindTransaction), "record kind: one of transaction or transfer")
	parseCmd.Flags().StringVar(&parseFlags.in, "in", "", "input filepath")
	parseCmd.Flags().Uint64Var(&parseFlags.minGasLimit, "min-gas-limit", 0, "override the configured min gas limit")
	parseCmd.Flags().Uint64Var(&parseFlags.gasLimitPerByte, "gas-limit-per-byte", 0, "override the configured gas limit per data byte")
	parseCmd.Flags().Uint32Var(&parseFlags.pubkeyLength, "pubkey-length", 0, "override the configured public key length")
	if err := parseCmd.MarkFlagRequired("in"); err != nil {
		logger.Fatal("error marking flag in required", zap.Error(err))
	}

	rootCmd.AddCommand(parseCmd)
}

// unmarshalRecords accepts either a single JSON object or an array of objects.
func unmarshalRecords(kind parser.Kind, data []byte) ([]parser.Record, bool, error) {
	data = bytes.TrimSpace(data)
	isArray := len(data) > 0 && data[0] == '['
	if !isArray {
		data = append(append([]byte{'['}, data...), ']')
	}

	var records []parser.Record
	switch kind {
	case parser.KindTransaction:
		var transactions []*parser.RawTransaction
		if err := json.Unmarshal(data, &transactions); err != nil {
			return nil, false, xerrors.Errorf("failed to unmarshal transactions: %w", err)
		}

		for _, transaction := range transactions {
			records = append(records, transaction)
		}
	case parser.KindTransfer:
		var transfers []*parser.RawTransfer
		if err := json.Unmarshal(data, &transfers); err != nil {
			return nil, false, xerrors.Errorf("failed to unmarshal transfers: %w", err)
		}

		for _, transfer := range transfers {
			records = append(records, transfer)
		}
	default:
		return nil, false, xerrors.Errorf("unsupported kind: %v", kind)
	}

	if len(records) == 0 {
		return nil, false, xerrors.New("no record found")
	}

	return records, isArray, nil
}
