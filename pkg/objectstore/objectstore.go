// Package objectstore talks to the bucket where job outputs are uploaded.
package objectstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

// Bucket presigns uploads and inspects objects.
type Bucket interface {
	// PresignPut returns a URL to upload the object with PUT, valid for expiry.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Stat returns the size of the object.
	//
	// Returns
	//
	// - error: ErrSizeUnavailable when the object is not found or the size is not known.
	Stat(ctx context.Context, key string) (int64, error)
}

// SizeProber finds out the size of a remote object.
type SizeProber interface {
	// Size returns the size of the object at url.
	//
	// Returns
	//
	// - error: ErrSizeUnavailable when the size is not known.
	Size(ctx context.Context, url string) (int64, error)
}

// Credentials to access the bucket. The JSON form is
//
//	{"accessKeyId": "...", "secretAccessKey": "...", "endpoint": "https://...", "region": "..."}
type Credentials struct {
	AccessKeyId     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	Endpoint        string `json:"endpoint,omitempty"`
	Region          string `json:"region,omitempty"`
}

func ParseCredentials(s string) (Credentials, error) {
	c := Credentials{}
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return Credentials{}, xe.Wrap(err)
	}
	if c.AccessKeyId == "" || c.SecretAccessKey == "" {
		return Credentials{}, xe.Wrap(fmt.Errorf("%w: accessKeyId and secretAccessKey are required", domerr.ErrInvalidArgument))
	}
	return c, nil
}

// BucketName extracts the bucket name from a bucket uri like "s3://bucket-name?region=...".
func BucketName(uri string) (string, error) {
	base, _, _ := strings.Cut(uri, "?")
	parts := strings.Split(base, "/")
	if len(parts) < 3 || parts[2] == "" {
		return "", xe.Wrap(fmt.Errorf("%w: no bucket name in %q", domerr.ErrInvalidArgument, uri))
	}
	return parts[2], nil
}

const defaultEndpoint = "https://s3.amazonaws.com"

type minioBucket struct {
	client *minio.Client
	bucket string
}

// Minio connects to an S3 compatible bucket.
func Minio(bucketURI string, creds Credentials) (Bucket, error) {
	bucket, err := BucketName(bucketURI)
	if err != nil {
		return nil, err
	}

	endpoint := creds.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	ep, err := url.Parse(endpoint)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if ep.Host == "" {
		return nil, xe.Wrap(fmt.Errorf("%w: endpoint should be a url: %q", domerr.ErrInvalidArgument, endpoint))
	}

	region := creds.Region
	if region == "" {
		region = "auto"
	}

	client, err := minio.New(ep.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKeyId, creds.SecretAccessKey, ""),
		Secure: ep.Scheme != "http",
		Region: region,
	})
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return &minioBucket{client: client, bucket: bucket}, nil
}

func (m *minioBucket) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedPutObject(ctx, m.bucket, key, expiry)
	if err != nil {
		return "", xe.Wrap(err)
	}
	return u.String(), nil
}

func (m *minioBucket) Stat(ctx context.Context, key string) (int64, error) {
	info, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return 0, xe.Wrap(fmt.Errorf("%w: %s: %s", domerr.ErrSizeUnavailable, key, err))
	}
	if info.Size < 0 {
		return 0, xe.Wrap(fmt.Errorf("%w: %s", domerr.ErrSizeUnavailable, key))
	}
	return info.Size, nil
}

// HTTPProber probes sizes with HEAD requests.
type HTTPProber struct {
	Client *http.Client
}

func (p HTTPProber) Size(ctx context.Context, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, xe.Wrap(fmt.Errorf("%w: HEAD %s: %s", domerr.ErrSizeUnavailable, url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || 300 <= resp.StatusCode {
		return 0, xe.Wrap(fmt.Errorf("%w: HEAD %s: status %d", domerr.ErrSizeUnavailable, url, resp.StatusCode))
	}
	size, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64)
	if err != nil || size < 0 {
		return 0, xe.Wrap(fmt.Errorf("%w: HEAD %s: no content-length", domerr.ErrSizeUnavailable, url))
	}
	return size, nil
}

type bucketProber struct {
	bucket   Bucket
	baseURL  string
	fallback SizeProber
}

// BucketProber probes sizes of objects under baseURL with Bucket.Stat,
// and other urls with fallback.
func BucketProber(bucket Bucket, baseURL string, fallback SizeProber) SizeProber {
	return bucketProber{bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/") + "/", fallback: fallback}
}

func (b bucketProber) Size(ctx context.Context, url string) (int64, error) {
	if key, ok := strings.CutPrefix(url, b.baseURL); ok && key != "" {
		return b.bucket.Stat(ctx, key)
	}
	return b.fallback.Size(ctx, url)
}
