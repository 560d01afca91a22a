package app

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/kinecosystem/agora-activator/netutil"
	_ "github.com/kinecosystem/agora-activator/testutil"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := loadConfig(viper.New(), "/does/not/exist.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig.ListenAddress, config.ListenAddress)
	assert.Equal(t, defaultConfig.HTTPListenAddress, config.HTTPListenAddress)
	assert.Equal(t, 30*time.Second, config.ShutdownGracePeriod)
}

func TestLoadConfig_File(t *testing.T) {
	f, err := ioutil.TempFile("", "activator_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(f.Name())

	_, err = f.WriteString(`
log_level: debug
http_listen_address: ":9090"
shutdown_grace_period: 5s
app:
  network: testnet
  activation_amount: "0.5"
`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	os.Setenv("LOG_TYPE", "human")
	defer os.Unsetenv("LOG_TYPE")
	os.Setenv("OTEL_ENDPOINT", "collector:4318")
	defer os.Unsetenv("OTEL_ENDPOINT")

	config, err := loadConfig(viper.New(), f.Name())
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "human", config.LogType)
	assert.Equal(t, ":9090", config.HTTPListenAddress)
	assert.Equal(t, defaultConfig.ListenAddress, config.ListenAddress)
	assert.Equal(t, 5*time.Second, config.ShutdownGracePeriod)
	assert.Equal(t, "collector:4318", config.OTelEndpoint)
	assert.Equal(t, "activator", config.OTelServiceName)
	assert.Equal(t, "testnet", config.AppConfig["network"])
	assert.Equal(t, "0.5", config.AppConfig["activation_amount"])
}

func TestLoadTLSConfig(t *testing.T) {
	tlsConfig, err := loadTLSConfig(BaseConfig{})
	require.NoError(t, err)
	assert.Nil(t, tlsConfig)

	_, err = loadTLSConfig(BaseConfig{TLSCertificate: "/cert.pem"})
	assert.Error(t, err)

	_, err = loadTLSConfig(BaseConfig{TLSCertificate: "/does/not/exist.pem", TLSKey: "/does/not/exist.key"})
	assert.Error(t, err)
}

func TestConfigureLogger(t *testing.T) {
	logger := logrus.New()
	configureLogger(logger, BaseConfig{LogLevel: "WARN", LogType: "json"})

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.Info("dropped")
	logger.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")

	logger = logrus.New()
	configureLogger(logger, BaseConfig{LogLevel: "nonsense", LogType: "human"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

func TestDebugMux(t *testing.T) {
	mux := newDebugMux(BaseConfig{EnableExpvar: true})

	for path, expected := range map[string]int{
		"/metrics":      http.StatusOK,
		"/debug/vars":   http.StatusOK,
		"/debug/pprof/": http.StatusNotFound,
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, expected, rec.Code, path)
	}
}

func TestGRPCServer_Health(t *testing.T) {
	port, err := netutil.GetAvailablePortForAddress("localhost")
	require.NoError(t, err)

	lis, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	require.NoError(t, err)

	var intercepted int64
	var o opts
	WithUnaryServerInterceptor(func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		atomic.AddInt64(&intercepted, 1)
		return handler(ctx, req)
	})(&o)

	serv := newGRPCServer(logrus.StandardLogger().WithField("type", "app_test"), nil, o)
	healthgrpc.RegisterHealthServer(serv, health.NewServer())
	go func() {
		_ = serv.Serve(lis)
	}()
	defer serv.Stop()

	conn, err := grpc.Dial(fmt.Sprintf("localhost:%d", port), grpc.WithInsecure())
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthgrpc.NewHealthClient(conn).Check(ctx, &healthgrpc.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthgrpc.HealthCheckResponse_SERVING, resp.Status)
	assert.EqualValues(t, 1, atomic.LoadInt64(&intercepted))
}
