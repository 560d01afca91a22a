package app

import (
	"context"
	"io"
	"io/ioutil"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/s3iface"
	"github.com/pkg/errors"
)

const (
	s3LoadTimeout = time.Minute
	maxS3FileSize = 1 << 20
)

// S3Loader loads files from s3://bucket/key URLs.
type S3Loader struct {
	client s3iface.ClientAPI
}

// NewS3Loader returns an S3Loader using client.
func NewS3Loader(client s3iface.ClientAPI) *S3Loader {
	return &S3Loader{client: client}
}

// Load implements FileLoader.Load.
func (l *S3Loader) Load(u *url.URL) ([]byte, error) {
	if u.Scheme != "s3" {
		return nil, errors.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("missing bucket")
	}

	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return nil, errors.New("missing key")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s3LoadTimeout)
	defer cancel()

	resp, err := l.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(u.Host),
		Key:    aws.String(key),
	}).Send(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s", u.String())
	}
	defer resp.Body.Close()

	return ioutil.ReadAll(io.LimitReader(resp.Body, maxS3FileSize))
}

func init() {
	var once sync.Once
	var loader FileLoader
	var initErr error

	RegisterFileLoaderCtor("s3", func() (FileLoader, error) {
		once.Do(func() {
			cfg, err := external.LoadDefaultAWSConfig()
			if err != nil {
				initErr = errors.Wrap(err, "failed to load aws config")
				return
			}
			loader = NewS3Loader(s3.New(cfg))
		})

		return loader, initErr
	})
}
