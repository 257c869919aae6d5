package signature

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	xe "github.com/protocaas/protocaas/pkg/errors"
	"github.com/protocaas/protocaas/pkg/utils/filewatch"
	kubeerr "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// KeySource provides the master key.
type KeySource interface {
	MasterKey(ctx context.Context) ([]byte, error)
}

// StaticKey is a master key given in memory.
type StaticKey []byte

func (k StaticKey) MasterKey(context.Context) ([]byte, error) {
	if len(k) < MinKeyLength {
		return nil, ErrShortKey
	}
	return k, nil
}

type fileKey struct {
	path   string
	logger *log.Logger

	mu  sync.Mutex
	key []byte
}

// FileKey reads the master key from a file.
//
// Trailing whitespaces in the file are ignored.
// The key is cached, and re-read when anything in the directory of the file changes,
// so that it follows rotation of a mounted secret.
// Watching stops when ctx is done.
func FileKey(ctx context.Context, path string, logger *log.Logger) (KeySource, error) {
	fk := &fileKey{path: path, logger: logger}
	if _, err := fk.load(); err != nil {
		return nil, err
	}

	go fk.watch(ctx)
	return fk, nil
}

func (fk *fileKey) load() ([]byte, error) {
	content, err := os.ReadFile(fk.path)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	key := bytes.TrimRight(content, " \t\r\n")
	if len(key) < MinKeyLength {
		return nil, xe.Wrap(ErrShortKey)
	}

	fk.mu.Lock()
	defer fk.mu.Unlock()
	fk.key = key
	return key, nil
}

func (fk *fileKey) watch(ctx context.Context) {
	dir := filepath.Dir(fk.path)
	for {
		wctx, cancel, err := filewatch.UntilModifyContext(ctx, dir)
		if err != nil {
			fk.logger.Printf("cannot watch %s: %v", dir, err)
			return
		}
		<-wctx.Done()
		cancel()
		if ctx.Err() != nil {
			return
		}

		fk.mu.Lock()
		fk.key = nil
		fk.mu.Unlock()
	}
}

func (fk *fileKey) MasterKey(context.Context) ([]byte, error) {
	fk.mu.Lock()
	key := fk.key
	fk.mu.Unlock()
	if key != nil {
		return key, nil
	}
	return fk.load()
}

type secretKey struct {
	client    kubernetes.Interface
	namespace string
	name      string
	field     string
	ttl       time.Duration
	now       func() time.Time

	mu        sync.Mutex
	key       []byte
	fetchedAt time.Time
}

type SecretKeyOption func(*secretKey) *secretKey

// WithCacheTTL sets how long the key is cached. Default is 1 minute.
func WithCacheTTL(ttl time.Duration) SecretKeyOption {
	return func(sk *secretKey) *secretKey {
		sk.ttl = ttl
		return sk
	}
}

// WithClock replaces the clock used to expire the cache.
func WithClock(now func() time.Time) SecretKeyOption {
	return func(sk *secretKey) *secretKey {
		sk.now = now
		return sk
	}
}

// SecretKey reads the master key from the field of a Kubernetes Secret.
func SecretKey(client kubernetes.Interface, namespace string, name string, field string, options ...SecretKeyOption) KeySource {
	sk := &secretKey{
		client:    client,
		namespace: namespace,
		name:      name,
		field:     field,
		ttl:       time.Minute,
		now:       time.Now,
	}
	for _, opt := range options {
		sk = opt(sk)
	}
	return sk
}

func (sk *secretKey) MasterKey(ctx context.Context) ([]byte, error) {
	sk.mu.Lock()
	defer sk.mu.Unlock()

	now := sk.now()
	if sk.key != nil && now.Sub(sk.fetchedAt) < sk.ttl {
		return sk.key, nil
	}

	secret, err := sk.client.CoreV1().Secrets(sk.namespace).Get(ctx, sk.name, metav1.GetOptions{})
	if kubeerr.IsNotFound(err) {
		return nil, xe.Wrap(fmt.Errorf("secret %s/%s is not found: %w", sk.namespace, sk.name, err))
	} else if err != nil {
		return nil, xe.Wrap(err)
	}

	key, ok := secret.Data[sk.field]
	if !ok {
		return nil, xe.Wrap(fmt.Errorf("secret %s/%s does not have %s", sk.namespace, sk.name, sk.field))
	}
	if len(key) < MinKeyLength {
		return nil, xe.Wrap(ErrShortKey)
	}

	sk.key = key
	sk.fetchedAt = now
	return key, nil
}
