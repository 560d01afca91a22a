// Package app runs a long lived service: configuration, logging, debug
// endpoints, an HTTP listener for the app's handler, a gRPC listener for
// health checks, and graceful shutdown.
package app

import (
	"context"
	"crypto/tls"
	"expvar"
	"flag"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_logrus "github.com/grpc-ecosystem/go-grpc-middleware/logging/logrus"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_ctxtags "github.com/grpc-ecosystem/go-grpc-middleware/tags"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"
)

// App is a long lived application serving HTTP requests.
//
// Init is called before any listener accepts connections; Stop after they
// have all been shut down.
type App interface {
	// Init initializes the app. When it returns, HTTPHandler must be ready to
	// serve requests.
	Init(config Config) error

	// HTTPHandler returns the handler served on http_listen_address.
	HTTPHandler() http.Handler

	// RegisterWithGRPC registers any gRPC services the app provides, in
	// addition to the standard health service.
	RegisterWithGRPC(server *grpc.Server)

	// ShutdownChan is closed when the app wants the process to shut down.
	ShutdownChan() <-chan struct{}

	// Stop releases the app's resources. It must be idempotent.
	Stop()
}

var (
	configPath = flag.String("config", "config.yaml", "configuration file path")

	osSigCh = make(chan os.Signal, 1)
)

func init() {
	signal.Notify(osSigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run initializes and serves app until a signal is received, a listener
// fails, or the app requests shutdown.
func Run(app App, options ...Option) error {
	flag.Parse()

	var o opts
	for _, opt := range options {
		opt(&o)
	}

	log := logrus.StandardLogger().WithField("type", "app")

	config, err := loadConfig(viper.GetViper(), *configPath)
	if err != nil {
		return err
	}

	configureLogger(logrus.StandardLogger(), config)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	shutdownTracing, err := initTracing(context.Background(), config)
	if err != nil {
		return err
	}

	// pprof and expvar install themselves on the default mux; only the debug
	// listener should expose them.
	http.DefaultServeMux = http.NewServeMux()

	tlsConfig, err := loadTLSConfig(config)
	if err != nil {
		return err
	}

	if err := app.Init(config.AppConfig); err != nil {
		return errors.Wrap(err, "failed to initialize application")
	}

	grpcLis, err := net.Listen("tcp", config.ListenAddress)
	if err != nil {
		app.Stop()
		return errors.Wrapf(err, "failed to listen on %s", config.ListenAddress)
	}
	httpLis, err := net.Listen("tcp", config.HTTPListenAddress)
	if err != nil {
		grpcLis.Close()
		app.Stop()
		return errors.Wrapf(err, "failed to listen on %s", config.HTTPListenAddress)
	}

	grpcServer := newGRPCServer(log, tlsConfig, o)
	app.RegisterWithGRPC(grpcServer)
	grpc_prometheus.Register(grpcServer)

	healthServer := health.NewServer()
	healthgrpc.RegisterHealthServer(grpcServer, healthServer)

	httpServer := &http.Server{
		Handler:           app.HTTPHandler(),
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go serveDebug(log, config)

	grpcDone := make(chan struct{})
	go func() {
		defer close(grpcDone)
		if err := grpcServer.Serve(grpcLis); err != nil {
			log.WithError(err).Error("grpc server stopped")
		}
	}()

	httpDone := make(chan struct{})
	go func() {
		defer close(httpDone)

		var err error
		if tlsConfig != nil {
			err = httpServer.ServeTLS(httpLis, "", "")
		} else {
			err = httpServer.Serve(httpLis)
		}
		if err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("http server stopped")
		}
	}()

	log.WithFields(logrus.Fields{
		"grpc_address": grpcLis.Addr().String(),
		"http_address": httpLis.Addr().String(),
	}).Info("serving")

	select {
	case sig := <-osSigCh:
		log.WithField("signal", sig.String()).Info("signal received, shutting down")
	case <-grpcDone:
		log.Info("grpc server shut down")
	case <-httpDone:
		log.Info("http server shut down")
	case <-app.ShutdownChan():
		log.Info("app shut down")
	}

	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)

		if err := httpServer.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("http server did not shut down cleanly")
		}
		grpcServer.GracefulStop()
		app.Stop()

		if err := shutdownTracing(ctx); err != nil {
			log.WithError(err).Warn("failed to flush traces")
		}
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return errors.Errorf("failed to stop the application within %v", config.ShutdownGracePeriod)
	}
}

// loadConfig reads the config file at path, if it exists, applies the
// environment overrides and decodes the result over the defaults.
func loadConfig(v *viper.Viper, path string) (BaseConfig, error) {
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	// An explicitly set config file that does not exist is not reported as
	// viper.ConfigFileNotFoundError, so it is checked here.
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return BaseConfig{}, errors.Wrapf(err, "failed to read config %s", path)
		}
	} else if !os.IsNotExist(err) {
		return BaseConfig{}, errors.Wrapf(err, "failed to stat config %s", path)
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to decode config")
	}

	return config, nil
}

func loadTLSConfig(config BaseConfig) (*tls.Config, error) {
	if config.TLSCertificate == "" {
		return nil, nil
	}
	if config.TLSKey == "" {
		return nil, errors.New("tls_private_key must be set when tls_certificate is")
	}

	certBytes, err := LoadFile(config.TLSCertificate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tls certificate")
	}
	keyBytes, err := LoadFile(config.TLSKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load tls key")
	}

	cert, err := tls.X509KeyPair(certBytes, keyBytes)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tls certificate or key")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func newGRPCServer(log *logrus.Entry, tlsConfig *tls.Config, o opts) *grpc.Server {
	unary := []grpc.UnaryServerInterceptor{
		grpc_ctxtags.UnaryServerInterceptor(),
		grpc_prometheus.UnaryServerInterceptor,
		grpc_logrus.UnaryServerInterceptor(log),
		grpc_recovery.UnaryServerInterceptor(),
	}
	stream := []grpc.StreamServerInterceptor{
		grpc_ctxtags.StreamServerInterceptor(),
		grpc_prometheus.StreamServerInterceptor,
		grpc_logrus.StreamServerInterceptor(log),
		grpc_recovery.StreamServerInterceptor(),
	}

	serverOpts := []grpc.ServerOption{
		grpc_middleware.WithUnaryServerChain(append(unary, o.unaryServerInterceptors...)...),
		grpc_middleware.WithStreamServerChain(append(stream, o.streamServerInterceptors...)...),
	}
	if tlsConfig != nil {
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsConfig)))
	}

	grpc_prometheus.EnableHandlingTimeHistogram()
	return grpc.NewServer(serverOpts...)
}

func newDebugMux(config BaseConfig) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	if config.EnableExpvar {
		mux.Handle("/debug/vars", expvar.Handler())
	}
	if config.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return mux
}

func serveDebug(log *logrus.Entry, config BaseConfig) {
	mux := newDebugMux(config)
	for {
		if err := http.ListenAndServe(config.DebugListenAddress, mux); err != nil {
			log.WithError(err).Warn("debug http server failed, retrying in 5s")
		}
		time.Sleep(5 * time.Second)
	}
}
