package netutil

import (
	"net"

	"github.com/pkg/errors"
)

// GetAvailablePortForAddress returns a port that is currently free on the
// provided address. The port may be taken by another process before it is
// used.
func GetAvailablePortForAddress(address string) (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(address, "0"))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to listen on %s", address)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port, nil
}
