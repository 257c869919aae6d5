package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	kserver "github.com/protocaas/protocaas/pkg/configs/server"
	dbInterface "github.com/protocaas/protocaas/pkg/domain/protocaas/db"
	"github.com/protocaas/protocaas/pkg/domain/protocaas/db/memory"
	kpg "github.com/protocaas/protocaas/pkg/domain/protocaas/db/postgres"
	xe "github.com/protocaas/protocaas/pkg/errors"
	"github.com/protocaas/protocaas/pkg/kubeutil"
	"github.com/protocaas/protocaas/pkg/lifecycle"
	"github.com/protocaas/protocaas/pkg/objectstore"
	"github.com/protocaas/protocaas/pkg/pubsub"
	"github.com/protocaas/protocaas/pkg/signature"
	"github.com/protocaas/protocaas/pkg/utils/retry"
)

// connectDatabase waits for postgres coming up, for a while.
func connectDatabase(ctx context.Context, conf *kserver.DatabaseConfig, logger *log.Logger) (dbInterface.Database, error) {
	if conf.InMemory() {
		logger.Println("WARNING: database is in memory. records are lost on exit.")
		return memory.New(), nil
	}
	return retry.Blocking(
		ctx, retry.Limited(10, retry.ExponentialBackoff(500*time.Millisecond, 2, 10*time.Second)),
		func() (dbInterface.Database, error) {
			db, err := kpg.New(ctx, conf.URL())
			if err != nil {
				logger.Printf("can not connect to the database (will retry): %s", err)
				return nil, fmt.Errorf("%w: %w", retry.ErrRetry, err)
			}
			return db, nil
		},
	)
}

// keySource of the master key.
//
// A file key is watched until ctx is done.
func keySource(ctx context.Context, conf *kserver.MasterKeyConfig, logger *log.Logger) (signature.KeySource, error) {
	if f := conf.File(); f != "" {
		return signature.FileKey(ctx, f, logger)
	}

	secret := conf.Secret()
	clientset, err := kubeutil.ConnectToK8s()
	if err != nil {
		return nil, err
	}
	return signature.SecretKey(
		clientset, secret.Namespace(), secret.Name(), secret.Field(),
		signature.WithCacheTTL(secret.CacheTTL()),
	), nil
}

// publisher for the backend configured.
//
// When the backend is "none", it returns nil publisher without error.
func publisher(conf *kserver.PubsubConfig) (pubsub.Publisher, error) {
	switch conf.Backend() {
	case "pubnub":
		p := conf.Pubnub()
		return pubsub.NewPubnub(pubsub.PubnubConfig{
			PublishKey:   p.PublishKey(),
			SubscribeKey: p.SubscribeKey(),
			UUID:         p.UUID(),
			Origin:       p.Origin(),
			Client:       &http.Client{Timeout: 10 * time.Second},
		}), nil
	case "kafka":
		k := conf.Kafka()
		return pubsub.NewKafka(pubsub.KafkaConfig{
			Brokers:  k.Brokers(),
			Topic:    k.Topic(),
			ClientID: k.ClientId(),
		})
	case "memory":
		return pubsub.NewMemory(64), nil
	case "none":
		return nil, nil
	}
	return nil, xe.Wrap(fmt.Errorf("unknown pubsub backend: %s", conf.Backend()))
}

func outputs(conf *kserver.OutputsConfig) (lifecycle.Outputs, error) {
	o := lifecycle.Outputs{
		BaseURL:         conf.BaseURL(),
		Prober:          objectstore.HTTPProber{Client: &http.Client{Timeout: 30 * time.Second}},
		UploadURLExpiry: conf.UploadURLExpiry(),
	}
	if conf.BucketURI() == "" {
		return o, nil
	}

	creds, err := objectstore.ParseCredentials(conf.Credentials())
	if err != nil {
		return lifecycle.Outputs{}, err
	}
	bucket, err := objectstore.Minio(conf.BucketURI(), creds)
	if err != nil {
		return lifecycle.Outputs{}, err
	}
	o.Bucket = bucket
	if conf.Probe() == "bucket" {
		o.Prober = objectstore.BucketProber(bucket, conf.BaseURL(), o.Prober)
	}
	return o, nil
}
