// Package storage mirrors board artifacts into S3-compatible object storage:
// the base board image can be pulled from a bucket at startup, and every
// transition publishes the freshly rendered board so surfaces outside Discord
// can link to it.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Richiks1/questboard/questboard/config"
)

type SpacesService struct {
	client *s3.Client
	bucket string
	region string
	root   string
}

func NewSpacesService(ctx context.Context, key, secret, region, bucket, root string) (*SpacesService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object storage config: %w", err)
	}

	return &SpacesService{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: region,
		root:   strings.Trim(root, "/"),
	}, nil
}

// DownloadBaseImage fetches the base board image into destPath so the
// renderer keeps reading from local disk. The write goes through a temp file
// and rename; a partial fetch never replaces an existing base image.
func (s *SpacesService) DownloadBaseImage(ctx context.Context, key, destPath string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to fetch base image %q: %w", key, err)
	}
	defer out.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".base-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), destPath)
}

// PublishBoard uploads the rendered board, overwriting the previously
// published one.
func (s *SpacesService) PublishBoard(ctx context.Context, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(s.objectKey(config.BoardFileName)),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("image/png"),
		CacheControl: aws.String("no-cache"),
		ACL:          types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return fmt.Errorf("failed to publish board image: %w", err)
	}
	return nil
}

// BoardURL is the public address of the last published board.
func (s *SpacesService) BoardURL() string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s",
		s.bucket, s.region, s.objectKey(config.BoardFileName))
}

func (s *SpacesService) objectKey(name string) string {
	name = strings.TrimPrefix(name, "/")
	if s.root == "" {
		return name
	}
	return s.root + "/" + name
}
