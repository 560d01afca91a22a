package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinecosystem/agora-activator/activation"
	"github.com/kinecosystem/agora-activator/app"
)

func TestDecodeConfig_Defaults(t *testing.T) {
	conf, err := decodeConfig(app.Config{"secret": "s"})
	require.NoError(t, err)

	assert.Equal(t, "0", conf.ActivationAmount)
	assert.Equal(t, activation.DefaultWelcomeMessage, conf.WelcomeMessage)
	assert.Equal(t, DynamicConfigNone, conf.DynamicConfig)
	assert.Equal(t, GuardNone, conf.Guard)
	assert.Equal(t, 30*time.Second, conf.NodeTimeout)
	assert.Equal(t, 5*time.Minute, conf.GuardTTL)
	assert.Equal(t, "/activator/", conf.EtcdPrefix)
	assert.Zero(t, conf.ActivationTimeout)
}

func TestDecodeConfig(t *testing.T) {
	conf, err := decodeConfig(app.Config{
		"network":            "testnet",
		"node_url":           "http://localhost:6876",
		"node_timeout":       "PT10S",
		"secret_url":         "file:///etc/activator/secret",
		"activation_amount":  "0.5",
		"welcome_message":    "hi",
		"activation_timeout": "PT1M",
		"dynamic_config":     "etcd",
		"etcd_endpoints":     "localhost:2379,localhost:2380",
		"guard":              "redis",
		"guard_ttl":          "2m",
		"redis_address":      "localhost:6379, localhost:6380",
		"metrics_type":       "statsd",
	})
	require.NoError(t, err)

	assert.Equal(t, Config{
		Network:           "testnet",
		NodeURL:           "http://localhost:6876",
		NodeTimeout:       10 * time.Second,
		SecretURL:         "file:///etc/activator/secret",
		ActivationAmount:  "0.5",
		WelcomeMessage:    "hi",
		ActivationTimeout: time.Minute,
		DynamicConfig:     DynamicConfigEtcd,
		EtcdEndpoints:     []string{"localhost:2379", "localhost:2380"},
		EtcdPrefix:        "/activator/",
		Guard:             GuardRedis,
		GuardTTL:          2 * time.Minute,
		RedisAddress:      "localhost:6379, localhost:6380",
		MetricsType:       "statsd",
	}, conf)
	assert.Equal(t, []string{"localhost:6379", "localhost:6380"}, conf.redisAddresses())
}

func TestDecodeConfig_YAMLList(t *testing.T) {
	conf, err := decodeConfig(app.Config{
		"secret":         "s",
		"dynamic_config": "etcd",
		"etcd_endpoints": []interface{}{"a:2379", "b:2379"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:2379", "b:2379"}, conf.EtcdEndpoints)
}

func TestDecodeConfig_Invalid(t *testing.T) {
	for name, raw := range map[string]app.Config{
		"no secret":                   {},
		"both secrets":                {"secret": "s", "secret_url": "/secret"},
		"bad amount":                  {"secret": "s", "activation_amount": "one"},
		"bad duration":                {"secret": "s", "node_timeout": "soon"},
		"zero timeout":                {"secret": "s", "node_timeout": "0s"},
		"negative activation timeout": {"secret": "s", "activation_timeout": "-1s"},
		"unknown dynamic":             {"secret": "s", "dynamic_config": "consul"},
		"etcd no endpoints":           {"secret": "s", "dynamic_config": "etcd"},
		"unknown guard":               {"secret": "s", "guard": "zookeeper"},
		"redis no address":            {"secret": "s", "guard": "redis"},
		"memory without ttl":          {"secret": "s", "guard": "memory", "guard_ttl": "0s"},
	} {
		_, err := decodeConfig(raw)
		assert.Error(t, err, name)
	}
}
