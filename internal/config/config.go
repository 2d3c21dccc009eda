package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"github.com/coinbase/chainparsers/config"
)

type (
	Config struct {
		ConfigName string        `mapstructure:"config_name" validate:"required"`
		Chain      ChainConfig   `mapstructure:"chain"`
		Parser     ParsersConfig `mapstructure:"parser"`
		StatsD     *StatsDConfig `mapstructure:"statsd"`

		namespace string
		env       Env
	}

	ChainConfig struct {
		Blockchain Blockchain `mapstructure:"blockchain" validate:"required"`
		Network    Network    `mapstructure:"network" validate:"required"`
		// AddressHrp is the human-readable part of the bech32 addresses on this network.
		AddressHrp string `mapstructure:"address_hrp" validate:"required"`
	}

	ParsersConfig struct {
		// NumWorkers bounds the number of records parsed concurrently by a batch.
		NumWorkers  int          `mapstructure:"num_workers" validate:"required,min=1"`
		Transaction ParserConfig `mapstructure:"transaction"`
		Transfer    ParserConfig `mapstructure:"transfer"`
	}

	// ParserConfig is bound to a parser handle at creation and never changes afterwards.
	ParserConfig struct {
		MinGasLimit     uint64 `json:"minGasLimit" mapstructure:"min_gas_limit"`
		GasLimitPerByte uint64 `json:"gasLimitPerByte" mapstructure:"gas_limit_per_byte"`
		PubkeyLength    uint32 `json:"pubkeyLength" mapstructure:"pubkey_length"`
		AddressHrp      string `json:"addressHrp,omitempty" mapstructure:"address_hrp"`
	}

	StatsDConfig struct {
		Address string `mapstructure:"address" validate:"required"`
		Prefix  string `mapstructure:"prefix"`
	}

	ConfigOption func(options *configOptions)

	Env string

	Blockchain string

	Network string

	configOptions struct {
		Namespace  string     `validate:"required"`
		Blockchain Blockchain `validate:"required"`
		Network    Network    `validate:"required"`
		Env        Env        `validate:"required,oneof=production development local"`
	}
)

const (
	EnvVarNamespace   = "CHAINPARSERS_NAMESPACE"
	EnvVarConfigName  = "CHAINPARSERS_CONFIG"
	EnvVarEnvironment = "CHAINPARSERS_ENVIRONMENT"
	EnvVarConfigRoot  = "CHAINPARSERS_CONFIG_ROOT"
	EnvVarConfigPath  = "CHAINPARSERS_CONFIG_PATH"

	DefaultNamespace  = "chainparsers"
	DefaultConfigName = "multiversx-mainnet"

	EnvBase        Env = "base"
	EnvLocal       Env = "local"
	EnvDevelopment Env = "development"
	EnvProduction  Env = "production"

	BlockchainMultiversX Blockchain = "multiversx"

	NetworkMainnet Network = "mainnet"
	NetworkDevnet  Network = "devnet"
	NetworkTestnet Network = "testnet"

	tagBlockchain = "blockchain"
	tagNetwork    = "network"
)

var (
	envs = map[string]Env{
		string(EnvLocal):       EnvLocal,
		string(EnvDevelopment): EnvDevelopment,
		string(EnvProduction):  EnvProduction,
	}

	networks = map[Blockchain][]Network{
		BlockchainMultiversX: {NetworkMainnet, NetworkDevnet, NetworkTestnet},
	}
)

func New(opts ...ConfigOption) (*Config, error) {
	validate := validator.New()

	// Get configname, such as "multiversx-mainnet"
	configName := getConfigName()

	configOpts, err := getConfigOptions(configName, opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to get config options %w", err)
	}

	if err := validate.Struct(configOpts); err != nil {
		return nil, xerrors.Errorf("failed to validate config options: %w", err)
	}

	configReader, err := getConfigData(configOpts.Namespace, EnvBase, configOpts.Blockchain, configOpts.Network)
	if err != nil {
		return nil, xerrors.Errorf("failed to locate config file: %w", err)
	}

	cfg := Config{
		namespace: configOpts.Namespace,
		env:       configOpts.Env,
	}

	v := viper.New()
	v.SetConfigName(string(EnvBase))
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("CHAINPARSERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults may be overridden by environment variables or config files.
	v.SetDefault("chain.address_hrp", "erd")
	v.SetDefault("parser.num_workers", 1)

	if err := v.ReadConfig(configReader); err != nil {
		return nil, xerrors.Errorf("failed to read config: %w", err)
	}

	// Merge in the env-specific config, such as development.yml
	if err := mergeInConfig(v, configOpts, configOpts.Env); err != nil {
		return nil, xerrors.Errorf("failed to merge in %v config: %w", configOpts.Env, err)
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		stringToNetworkHookFunc(),
	))); err != nil {
		return nil, xerrors.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, xerrors.Errorf("failed to validate config: %w", err)
	}

	if cfg.Chain.Blockchain != configOpts.Blockchain || cfg.Chain.Network != configOpts.Network {
		return nil, xerrors.Errorf(
			"config file declares %v-%v, expected %v-%v",
			cfg.Chain.Blockchain, cfg.Chain.Network, configOpts.Blockchain, configOpts.Network,
		)
	}

	return &cfg, nil
}

func GetEnv() Env {
	env, ok := envs[os.Getenv(EnvVarEnvironment)]
	if !ok {
		return EnvLocal
	}

	return env
}

func getConfigName() string {
	configName, ok := os.LookupEnv(EnvVarConfigName)
	if !ok {
		configName = DefaultConfigName
	}
	return configName
}

func GetConfigRoot() string {
	return os.Getenv(EnvVarConfigRoot)
}

func GetConfigPath() string {
	return os.Getenv(EnvVarConfigPath)
}

func mergeInConfig(v *viper.Viper, configOpts *configOptions, env Env) error {
	// Merge in the env-specific config if available.
	if configReader, err := getConfigData(configOpts.Namespace, env, configOpts.Blockchain, configOpts.Network); err == nil {
		v.SetConfigName(string(env))
		if err := v.MergeConfig(configReader); err != nil {
			return xerrors.Errorf("failed to merge config %v: %w", env, err)
		}
	}
	return nil
}

func (c *Config) Namespace() string {
	return c.namespace
}

func (c *Config) Env() Env {
	return c.env
}

func (c *Config) Blockchain() Blockchain {
	return c.Chain.Blockchain
}

func (c *Config) Network() Network {
	return c.Chain.Network
}

func (c *Config) GetCommonTags() map[string]string {
	return map[string]string{
		tagBlockchain: string(c.Blockchain()),
		tagNetwork:    string(c.Network()),
	}
}

func WithNamespace(namespace string) ConfigOption {
	return func(opts *configOptions) {
		opts.Namespace = namespace
	}
}

func WithBlockchain(blockchain Blockchain) ConfigOption {
	return func(opts *configOptions) {
		opts.Blockchain = blockchain
	}
}

func WithNetwork(network Network) ConfigOption {
	return func(opts *configOptions) {
		opts.Network = network
	}
}

func WithEnvironment(env Env) ConfigOption {
	return func(opts *configOptions) {
		opts.Env = env
	}
}

func getConfigOptions(configName string, opts ...ConfigOption) (*configOptions, error) {
	configOpts := &configOptions{}
	for _, opt := range opts {
		opt(configOpts)
	}

	if configOpts.Namespace == "" {
		namespace := os.Getenv(EnvVarNamespace)
		if namespace == "" {
			namespace = DefaultNamespace
		}

		configOpts.Namespace = namespace
	}

	if configOpts.Env == "" {
		configOpts.Env = GetEnv()
	}

	if configOpts.Blockchain == "" && configOpts.Network == "" {
		blockchain, network, err := ParseConfigName(configName)
		if err != nil {
			return nil, xerrors.Errorf("failed to parse config name: %w", err)
		}

		configOpts.Blockchain = blockchain
		configOpts.Network = network
	}

	return configOpts, nil
}

// ParseConfigName splits a config name such as "multiversx-mainnet" into its blockchain and network.
func ParseConfigName(configName string) (Blockchain, Network, error) {
	// Normalize the config name by replacing "-" with "_".
	configName = strings.ReplaceAll(configName, "-", "_")

	splitString := strings.Split(configName, "_")
	if len(splitString) != 2 {
		return "", "", xerrors.Errorf("config name is invalid: %v", configName)
	}

	blockchain := Blockchain(splitString[0])
	network, err := ParseNetwork(blockchain, splitString[1])
	if err != nil {
		return "", "", xerrors.Errorf("failed to parse network from config name %v: %w", configName, err)
	}

	return blockchain, network, nil
}

func ParseNetwork(blockchain Blockchain, name string) (Network, error) {
	supported, ok := networks[blockchain]
	if !ok {
		return "", xerrors.Errorf("unsupported blockchain: %v", blockchain)
	}

	for _, network := range supported {
		if string(network) == name {
			return network, nil
		}
	}

	return "", xerrors.Errorf("unsupported network %v for %v", name, blockchain)
}

// Networks returns the networks supported by the blockchain.
func Networks(blockchain Blockchain) []Network {
	return networks[blockchain]
}

func getConfigData(namespace string, env Env, blockchain Blockchain, network Network) (io.Reader, error) {
	configRoot := GetConfigRoot()
	configPath := GetConfigPath()
	// If configPath is not set, try to construct the file system path from configRoot.
	if len(configPath) == 0 && len(configRoot) > 0 {
		configPath = fmt.Sprintf("%v/%v/%v/%v/%v.yml", configRoot, namespace, blockchain, network, env)
	}

	// If either configRoot or configPath is set, read the config from the file system.
	if len(configPath) > 0 {
		reader, err := os.Open(configPath)
		if err != nil {
			return nil, xerrors.Errorf("failed to read config file %v: %w", configPath, err)
		}
		return reader, nil
	}

	// Read the config from the embedded config.Store.
	configPath = fmt.Sprintf("%v/%v/%v/%v.yml", namespace, blockchain, network, env)
	data, err := config.Store.ReadFile(configPath)
	if err != nil {
		return nil, xerrors.Errorf("failed to read config file %v: %w", configPath, err)
	}
	return bytes.NewBuffer(data), nil
}

func stringToNetworkHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		if t != reflect.TypeOf(NetworkMainnet) {
			return data, nil
		}

		name := data.(string)
		for _, supported := range networks {
			for _, network := range supported {
				if string(network) == name {
					return network, nil
				}
			}
		}

		return nil, xerrors.Errorf("invalid network: %v", name)
	}
}
