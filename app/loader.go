package app

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/pkg/errors"
)

var (
	loaderMu    sync.Mutex
	loaderCtors = make(map[string]FileLoaderCtor)
)

// FileLoader loads the contents of a file identified by URL.
type FileLoader interface {
	Load(u *url.URL) ([]byte, error)
}

// FileLoaderCtor constructs a FileLoader on first use.
type FileLoaderCtor func() (FileLoader, error)

// RegisterFileLoaderCtor registers the loader for a URL scheme. It panics if
// the scheme is already registered.
func RegisterFileLoaderCtor(scheme string, ctor FileLoaderCtor) {
	loaderMu.Lock()
	defer loaderMu.Unlock()

	if _, exists := loaderCtors[scheme]; exists {
		panic(fmt.Sprintf("file loader already registered for scheme %q", scheme))
	}
	loaderCtors[scheme] = ctor
}

// LoadFile loads the file at fileURL with the loader registered for its
// scheme. Plain paths and file:// URLs are read from the local filesystem;
// s3://bucket/key URLs from S3.
func LoadFile(fileURL string) ([]byte, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file url %s", fileURL)
	}

	loaderMu.Lock()
	ctor, exists := loaderCtors[u.Scheme]
	loaderMu.Unlock()
	if !exists {
		return nil, errors.Errorf("no file loader for scheme %q", u.Scheme)
	}

	l, err := ctor()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create loader for %s", fileURL)
	}

	return l.Load(u)
}
