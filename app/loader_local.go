package app

import (
	"io/ioutil"
	"net/url"
)

// LocalLoader loads files from the local filesystem.
type LocalLoader struct{}

// Load implements FileLoader.Load. A file://localhost/ host refers to the
// root; any other host is treated as the first path element.
func (LocalLoader) Load(u *url.URL) ([]byte, error) {
	path := u.Path
	if u.Host != "" && u.Host != "localhost" {
		path = "/" + u.Host + u.Path
	}
	return ioutil.ReadFile(path)
}

func init() {
	ctor := func() (FileLoader, error) {
		return LocalLoader{}, nil
	}

	RegisterFileLoaderCtor("", ctor)
	RegisterFileLoaderCtor("file", ctor)
}
