package app

import (
	"time"
)

// Config is the application specific section of the configuration, passed to
// App.Init. Apps decode it with mapstructure.
type Config map[string]interface{}

// BaseConfig is the process level configuration shared by every app.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogType  string `mapstructure:"log_type"`

	// ListenAddress is the gRPC listener, serving health checks and any
	// services registered by the app.
	ListenAddress string `mapstructure:"listen_address"`

	// HTTPListenAddress serves the app's HTTP handler.
	HTTPListenAddress string `mapstructure:"http_listen_address"`

	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`

	// TLSCertificate and TLSKey are optional file or s3 URLs. When set, both
	// the gRPC and HTTP listeners serve TLS.
	TLSCertificate string `mapstructure:"tls_certificate"`
	TLSKey         string `mapstructure:"tls_private_key"`

	// OTelEndpoint is the host:port of an OTLP/HTTP trace collector. Spans are
	// not exported when it is empty.
	OTelEndpoint    string `mapstructure:"otel_endpoint"`
	OTelInsecure    bool   `mapstructure:"otel_insecure"`
	OTelServiceName string `mapstructure:"otel_service_name"`

	EnablePprof        bool   `mapstructure:"enable_pprof"`
	EnableExpvar       bool   `mapstructure:"enable_expvar"`
	DebugListenAddress string `mapstructure:"debug_listen_address"`

	AppConfig Config `mapstructure:"app"`
}

var defaultConfig = BaseConfig{
	LogLevel: "info",
	LogType:  "json",

	ListenAddress:       ":8085",
	HTTPListenAddress:   ":8080",
	ShutdownGracePeriod: 30 * time.Second,

	OTelServiceName: "activator",

	EnablePprof:        false,
	EnableExpvar:       true,
	DebugListenAddress: ":8123",
}

// envBindings maps configuration keys to the environment variables that
// override them.
var envBindings = map[string]string{
	"log_level":             "LOG_LEVEL",
	"log_type":              "LOG_TYPE",
	"listen_address":        "LISTEN_ADDRESS",
	"http_listen_address":   "HTTP_LISTEN_ADDRESS",
	"debug_listen_address":  "DEBUG_LISTEN_ADDRESS",
	"shutdown_grace_period": "SHUTDOWN_GRACE_PERIOD",
	"tls_certificate":       "TLS_CERTIFICATE",
	"tls_private_key":       "TLS_PRIVATE_KEY",
	"otel_endpoint":         "OTEL_ENDPOINT",
	"otel_insecure":         "OTEL_INSECURE",
}
