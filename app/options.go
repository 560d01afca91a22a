package app

import (
	"google.golang.org/grpc"
)

// Option configures Run.
type Option func(o *opts)

type opts struct {
	unaryServerInterceptors  []grpc.UnaryServerInterceptor
	streamServerInterceptors []grpc.StreamServerInterceptor
}

// WithUnaryServerInterceptor adds a unary interceptor to the gRPC server. It
// runs after the default interceptors.
func WithUnaryServerInterceptor(interceptor grpc.UnaryServerInterceptor) Option {
	return func(o *opts) {
		o.unaryServerInterceptors = append(o.unaryServerInterceptors, interceptor)
	}
}

// WithStreamServerInterceptor adds a stream interceptor to the gRPC server.
// It runs after the default interceptors.
func WithStreamServerInterceptor(interceptor grpc.StreamServerInterceptor) Option {
	return func(o *opts) {
		o.streamServerInterceptors = append(o.streamServerInterceptors, interceptor)
	}
}
