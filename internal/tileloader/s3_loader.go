package tileloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/racemap/elevation-service/internal/elevationerr"
	"github.com/racemap/elevation-service/internal/geokey"
)

// s3API is the subset of *s3.Client this loader calls, narrowed so tests
// can substitute a fake without reaching over the network.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Loader struct {
	client s3API
	bucket string
	prefix string
	opts   Options
}

// newS3Loader builds a backend from the "bucket[/prefix]" remainder of an
// s3:// URI (the "s3://" scheme has already been trimmed by the caller).
//
// Credential and region/endpoint resolution follows spec.md §4.3:
//   - explicit region + explicit endpoint -> custom endpoint at that region
//   - explicit region alone               -> that AWS region
//   - no region, explicit endpoint        -> custom endpoint, region "us-east-1"
//   - otherwise                           -> default region "us-east-1"
//
// Grounded on jcom-dev-zmanim/cmd/seed-geodata/main.go's
// config.LoadDefaultConfig(ctx, config.WithRegion(region)) +
// s3.NewFromConfig(cfg) idiom.
func newS3Loader(rest string, opts Options) (*s3Loader, error) {
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		bucket = opts.S3.Bucket
	}
	if bucket == "" {
		return nil, elevationerr.New(elevationerr.BackendFailure, "s3 base URI missing bucket name (set TILE_SET_PATH=s3://bucket or S3_BUCKET)")
	}

	region := firstNonEmpty(opts.S3.Region, os.Getenv("S3_REGION"), os.Getenv("AWS_REGION"))
	endpoint := firstNonEmpty(opts.S3.Endpoint, os.Getenv("S3_ENDPOINT"))
	if region == "" {
		region = "us-east-1"
	}

	ctx := context.Background()
	var loadOpts []func(*awsconfig.LoadOptions) error
	loadOpts = append(loadOpts, awsconfig.WithRegion(region))

	accessKey := firstNonEmpty(opts.S3.AccessKeyID, os.Getenv("S3_ACCESS_KEY_ID"), os.Getenv("AWS_ACCESS_KEY_ID"))
	secretKey := firstNonEmpty(opts.S3.SecretAccessKey, os.Getenv("S3_SECRET_ACCESS_KEY"), os.Getenv("AWS_SECRET_ACCESS_KEY"))
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, elevationerr.Wrap(elevationerr.BackendFailure, "load AWS config", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = awssdk.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Loader{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), opts: opts}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func (l *s3Loader) Load(ctx context.Context, key geokey.CellKey) ([]byte, error) {
	objectKey := key.Path()
	if l.prefix != "" {
		objectKey = l.prefix + "/" + objectKey
	}

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: awssdk.String(l.bucket),
		Key:    awssdk.String(objectKey),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, elevationerr.New(elevationerr.TileNotFound, objectKey)
		}
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, elevationerr.New(elevationerr.TileNotFound, objectKey)
		}
		return nil, elevationerr.Wrap(elevationerr.BackendFailure,
			fmt.Sprintf("get s3://%s/%s", l.bucket, objectKey), err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, elevationerr.Wrap(elevationerr.BackendFailure, "read s3 object body", err)
	}
	return maybeGunzip(raw, l.opts.Gzip)
}
