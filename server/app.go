package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"

	"github.com/kinecosystem/agora-activator/activation"
	"github.com/kinecosystem/agora-activator/app"
	"github.com/kinecosystem/agora-activator/config"
	envconfig "github.com/kinecosystem/agora-activator/config/env"
	etcdconfig "github.com/kinecosystem/agora-activator/config/etcd"
	"github.com/kinecosystem/agora-activator/guard"
	guardmemory "github.com/kinecosystem/agora-activator/guard/memory"
	guardredis "github.com/kinecosystem/agora-activator/guard/redis"
	"github.com/kinecosystem/agora-activator/ledger"
	"github.com/kinecosystem/agora-activator/metrics"
	_ "github.com/kinecosystem/agora-activator/metrics/memory"
	_ "github.com/kinecosystem/agora-activator/metrics/statsd"
	"github.com/kinecosystem/agora-activator/network"
)

const dialTimeout = 5 * time.Second

type activatorApp struct {
	log *logrus.Entry

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	stopOnce     sync.Once

	server        *Server
	metricsClient metrics.Client
	etcdClient    *clientv3.Client
	redisClient   redis.UniversalClient
	dynamic       []shutdowner
}

type shutdowner interface {
	Shutdown()
}

// NewApp returns the activator app, to be run with app.Run.
func NewApp() app.App {
	return &activatorApp{
		log:        logrus.StandardLogger().WithField("type", "server/app"),
		shutdownCh: make(chan struct{}),
	}
}

// Init implements app.App.Init.
func (a *activatorApp) Init(appConfig app.Config) (err error) {
	defer func() {
		if err != nil {
			a.Stop()
		}
	}()

	conf, err := decodeConfig(appConfig)
	if err != nil {
		return err
	}

	n, err := network.Parse(conf.Network)
	if err != nil {
		return errors.Wrap(err, "failed to determine network")
	}

	secret, err := loadSecret(conf)
	if err != nil {
		return err
	}

	a.metricsClient, err = metrics.CreateClient(conf.MetricsType, metrics.WithGlobalTags(metrics.WithServiceTag("activator")))
	if err != nil {
		return errors.Wrap(err, "failed to create metrics client")
	}

	nodeURL := conf.NodeURL
	if nodeURL == "" {
		nodeURL = n.DefaultNodeURL()
	}
	client := ledger.NewWithHTTPClient(nodeURL, &http.Client{
		Timeout:   conf.NodeTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})

	dynamic, err := a.dynamicConfig(conf)
	if err != nil {
		return err
	}

	g, err := a.guard(conf)
	if err != nil {
		return err
	}

	activator, err := activation.New(
		secret,
		client,
		activation.WithAmount(dynamic.amount),
		activation.WithMessage(dynamic.message),
		activation.WithTimeout(dynamic.timeout),
		activation.WithGuard(g),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create activator")
	}

	a.server, err = New(activator, n, a.metricsClient)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	a.log.WithFields(logrus.Fields{
		"network":        n,
		"node_url":       nodeURL,
		"dynamic_config": conf.DynamicConfig,
		"guard":          conf.Guard,
		"timeout":        conf.ActivationTimeout,
	}).Info("activator initialized")

	return nil
}

// HTTPHandler implements app.App.HTTPHandler.
func (a *activatorApp) HTTPHandler() http.Handler {
	return a.server
}

// RegisterWithGRPC implements app.App.RegisterWithGRPC. The activator only
// serves the standard health service over gRPC.
func (a *activatorApp) RegisterWithGRPC(*grpc.Server) {}

// ShutdownChan implements app.App.ShutdownChan.
func (a *activatorApp) ShutdownChan() <-chan struct{} {
	return a.shutdownCh
}

// Stop implements app.App.Stop.
func (a *activatorApp) Stop() {
	a.stopOnce.Do(func() {
		a.shutdownOnce.Do(func() { close(a.shutdownCh) })

		if a.server != nil {
			a.server.Close()
		}
		for _, c := range a.dynamic {
			c.Shutdown()
		}
		if a.etcdClient != nil {
			if err := a.etcdClient.Close(); err != nil {
				a.log.WithError(err).Warn("failed to close etcd client")
			}
		}
		if a.redisClient != nil {
			if err := a.redisClient.Close(); err != nil {
				a.log.WithError(err).Warn("failed to close redis client")
			}
		}
		if a.metricsClient != nil {
			if err := a.metricsClient.Close(); err != nil {
				a.log.WithError(err).Warn("failed to close metrics client")
			}
		}
	})
}

type dynamicValues struct {
	amount  *config.String
	message *config.String
	timeout *config.Duration
}

// dynamicConfig returns the sources of the values read on every activation.
// The static values are used whenever the dynamic source has none.
func (a *activatorApp) dynamicConfig(conf Config) (values dynamicValues, err error) {
	var amountConf, messageConf, timeoutConf config.Config

	switch conf.DynamicConfig {
	case DynamicConfigEnv:
		amountConf = envconfig.NewConfig(AmountEnvVariable)
		messageConf = envconfig.NewConfig(MessageEnvVariable)
		timeoutConf = envconfig.NewConfig(TimeoutEnvVariable)
	case DynamicConfigEtcd:
		a.etcdClient, err = clientv3.New(clientv3.Config{
			Endpoints:   conf.EtcdEndpoints,
			DialTimeout: dialTimeout,
		})
		if err != nil {
			return values, errors.Wrap(err, "failed to create etcd client")
		}

		if amountConf, err = etcdconfig.NewConfig(a.etcdClient, conf.EtcdPrefix+"activation_amount"); err != nil {
			return values, err
		}
		if messageConf, err = etcdconfig.NewConfig(a.etcdClient, conf.EtcdPrefix+"welcome_message"); err != nil {
			amountConf.Shutdown()
			return values, err
		}
		if timeoutConf, err = etcdconfig.NewConfig(a.etcdClient, conf.EtcdPrefix+"activation_timeout"); err != nil {
			amountConf.Shutdown()
			messageConf.Shutdown()
			return values, err
		}
	}

	values = dynamicValues{
		amount:  config.NewString(amountConf, conf.ActivationAmount),
		message: config.NewString(messageConf, conf.WelcomeMessage),
		timeout: config.NewDuration(timeoutConf, conf.ActivationTimeout),
	}
	a.dynamic = append(a.dynamic, values.amount, values.message, values.timeout)

	return values, nil
}

func (a *activatorApp) guard(conf Config) (guard.Guard, error) {
	switch conf.Guard {
	case GuardMemory:
		return guardmemory.New(conf.GuardTTL, a.metricsClient), nil
	case GuardRedis:
		a.redisClient = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:       conf.redisAddresses(),
			DialTimeout: dialTimeout,
		})
		if err := a.redisClient.Ping().Err(); err != nil {
			return nil, errors.Wrap(err, "failed to ping redis")
		}
		return guardredis.New(a.redisClient, conf.GuardTTL), nil
	default:
		return guard.None{}, nil
	}
}

func loadSecret(conf Config) (string, error) {
	if conf.Secret != "" {
		return conf.Secret, nil
	}

	b, err := app.LoadFile(conf.SecretURL)
	if err != nil {
		return "", errors.Wrap(err, "failed to load sender secret")
	}

	secret := strings.TrimSpace(string(b))
	if secret == "" {
		return "", errors.Errorf("sender secret at %s is empty", conf.SecretURL)
	}
	return secret, nil
}
