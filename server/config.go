package server

import (
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/kinecosystem/agora-activator/activation"
	"github.com/kinecosystem/agora-activator/app"
	"github.com/kinecosystem/agora-activator/ledger"
	"github.com/kinecosystem/agora-activator/timeutil"
)

const (
	DynamicConfigNone = "none"
	DynamicConfigEnv  = "env"
	DynamicConfigEtcd = "etcd"

	GuardNone   = "none"
	GuardMemory = "memory"
	GuardRedis  = "redis"
)

// Environment variables read per activation when dynamic_config is env.
const (
	AmountEnvVariable  = "ACTIVATOR_ACTIVATION_AMOUNT"
	MessageEnvVariable = "ACTIVATOR_WELCOME_MESSAGE"
	TimeoutEnvVariable = "ACTIVATOR_ACTIVATION_TIMEOUT"
)

// Config is the app section of the activator configuration.
type Config struct {
	// Network is mainnet or testnet. If empty, it is derived from
	// ACTIVATOR_ENVIRONMENT.
	Network string `mapstructure:"network"`

	// NodeURL defaults to a public node of the network.
	NodeURL     string        `mapstructure:"node_url"`
	NodeTimeout time.Duration `mapstructure:"node_timeout"`

	// SecretURL is a file or s3 URL holding the sender secret. Secret may be
	// used instead, for development.
	SecretURL string `mapstructure:"secret_url"`
	Secret    string `mapstructure:"secret"`

	// ActivationAmount is in coins, e.g. "0.5". Zero sends a plain message.
	ActivationAmount string `mapstructure:"activation_amount"`
	WelcomeMessage   string `mapstructure:"welcome_message"`

	// ActivationTimeout bounds a whole activation. Zero leaves only the
	// per-request node_timeout in place.
	ActivationTimeout time.Duration `mapstructure:"activation_timeout"`

	DynamicConfig string   `mapstructure:"dynamic_config"`
	EtcdEndpoints []string `mapstructure:"etcd_endpoints"`
	EtcdPrefix    string   `mapstructure:"etcd_prefix"`

	Guard    string        `mapstructure:"guard"`
	GuardTTL time.Duration `mapstructure:"guard_ttl"`

	// RedisAddress is a comma separated list of redis (or redis cluster)
	// addresses.
	RedisAddress string `mapstructure:"redis_address"`

	// MetricsType selects the metrics client (memory or statsd). If empty,
	// metrics are discarded.
	MetricsType string `mapstructure:"metrics_type"`
}

var defaultConfig = Config{
	NodeTimeout:      ledger.DefaultTimeout,
	ActivationAmount: "0",
	WelcomeMessage:   activation.DefaultWelcomeMessage,
	DynamicConfig:    DynamicConfigNone,
	EtcdPrefix:       "/activator/",
	Guard:            GuardNone,
	GuardTTL:         5 * time.Minute,
}

// decodeConfig decodes the app section over the defaults and validates it.
func decodeConfig(raw app.Config) (Config, error) {
	conf := defaultConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDurationHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &conf,
	})
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to create config decoder")
	}
	if err := decoder.Decode(map[string]interface{}(raw)); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode app config")
	}

	if err := conf.validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid app config")
	}
	return conf, nil
}

func (c Config) validate() error {
	if c.SecretURL == "" && c.Secret == "" {
		return errors.New("one of secret_url or secret must be set")
	}
	if c.SecretURL != "" && c.Secret != "" {
		return errors.New("only one of secret_url or secret may be set")
	}

	if _, err := ledger.ToPlanck(c.ActivationAmount); err != nil {
		return errors.Wrapf(err, "invalid activation_amount %q", c.ActivationAmount)
	}
	if c.NodeTimeout <= 0 {
		return errors.New("node_timeout must be positive")
	}
	if c.ActivationTimeout < 0 {
		return errors.New("activation_timeout must not be negative")
	}

	switch c.DynamicConfig {
	case DynamicConfigNone, DynamicConfigEnv:
	case DynamicConfigEtcd:
		if len(c.EtcdEndpoints) == 0 {
			return errors.New("etcd_endpoints must be set when dynamic_config is etcd")
		}
	default:
		return errors.Errorf("unknown dynamic_config %q", c.DynamicConfig)
	}

	switch c.Guard {
	case GuardNone:
	case GuardMemory, GuardRedis:
		if c.GuardTTL <= 0 {
			return errors.New("guard_ttl must be positive")
		}
		if c.Guard == GuardRedis && c.RedisAddress == "" {
			return errors.New("redis_address must be set when guard is redis")
		}
	default:
		return errors.Errorf("unknown guard %q", c.Guard)
	}

	return nil
}

func (c Config) redisAddresses() []string {
	var addrs []string
	for _, addr := range strings.Split(c.RedisAddress, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}

// stringToDurationHook accepts both Go ("90s") and ISO-8601 ("PT90S")
// durations.
func stringToDurationHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	return timeutil.ParseDuration(data.(string))
}
