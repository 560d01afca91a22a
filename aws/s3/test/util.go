// Package test starts a dockerized S3 mock for integration tests.
package test

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/s3iface"
	"github.com/ory/dockertest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"mfycheng.dev/retry"
	"mfycheng.dev/retry/backoff"
)

const (
	repository = "adobe/s3mock"
	tag        = "2.1.29"
)

var log = logrus.StandardLogger().WithField("type", "aws/s3/test")

// StartS3 runs an S3 mock container and returns a path-style client pointed at
// it. Static credentials and a fake region keep the client away from real AWS.
func StartS3(pool *dockertest.Pool) (s3iface.ClientAPI, func(), error) {
	resource, err := pool.Run(repository, tag, nil)
	if err != nil {
		return nil, func() {}, errors.Wrap(err, "failed to start s3 container")
	}

	closeFunc := func() {
		if err := pool.Purge(resource); err != nil {
			log.WithError(err).Warn("failed to purge s3 container")
		}
	}

	cfg, err := external.LoadDefaultAWSConfig()
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "failed to load aws config")
	}
	cfg.Region = "test-region-1"
	cfg.Credentials = aws.NewStaticCredentialsProvider("test", "test", "")
	cfg.EndpointResolver = aws.ResolveWithEndpointURL("http://" + resource.GetHostPort("9090/tcp"))

	client := s3.New(cfg)
	client.ForcePathStyle = true

	_, err = retry.Retry(
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_, err := client.ListBucketsRequest(&s3.ListBucketsInput{}).Send(ctx)
			return err
		},
		retry.Limit(40),
		retry.Backoff(backoff.Constant(500*time.Millisecond), 500*time.Millisecond),
	)
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "s3 container did not become available")
	}

	return client, closeFunc, nil
}
