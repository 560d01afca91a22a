package metrics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// DefaultNamespace is the namespace used when none is configured.
const DefaultNamespace = "activator"

var (
	ctorMu sync.Mutex
	ctors  = make(map[string]ClientCtor)
)

// ClientCtor creates a Client from a ClientConfig.
type ClientCtor func(config *ClientConfig) (Client, error)

// RegisterClientCtor makes a client type available to CreateClient. It panics
// if the type was already registered.
func RegisterClientCtor(clientType string, ctor ClientCtor) {
	ctorMu.Lock()
	defer ctorMu.Unlock()

	if _, exists := ctors[clientType]; exists {
		panic(fmt.Sprintf("metrics client type %q already registered", clientType))
	}

	ctors[clientType] = ctor
}

// CreateClient creates a Client of the registered type. An empty type yields
// a NopClient.
func CreateClient(clientType string, opts ...ClientOption) (Client, error) {
	if clientType == "" {
		return NopClient{}, nil
	}

	ctorMu.Lock()
	ctor, ok := ctors[clientType]
	ctorMu.Unlock()
	if !ok {
		return nil, errors.Errorf("unknown metrics client type %q (registered: %v)", clientType, registeredTypes())
	}

	return ctor(newClientConfig(opts...))
}

func registeredTypes() []string {
	ctorMu.Lock()
	defer ctorMu.Unlock()

	types := make([]string, 0, len(ctors))
	for t := range ctors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
