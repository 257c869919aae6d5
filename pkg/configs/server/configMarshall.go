package server

import (
	"fmt"
	"time"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/server.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

type ConfigMarshall struct {
	Port                   int32                   `yaml:"port"`
	LogLevel               string                  `yaml:"logLevel,omitempty"`
	Database               *DatabaseConfigMarshall `yaml:"database"`
	Signing                *SigningConfigMarshall  `yaml:"signing"`
	Outputs                *OutputsConfigMarshall  `yaml:"outputs,omitempty"`
	Pubsub                 *PubsubConfigMarshall   `yaml:"pubsub,omitempty"`
	Sessions               *SessionsConfigMarshall `yaml:"sessions,omitempty"`
	DefaultComputeResource string                  `yaml:"defaultComputeResource,omitempty"`
}

var _ Marshalled[*Config] = &ConfigMarshall{}

func (c *ConfigMarshall) trySeal(path string) *Config {
	port := c.Port
	if port == 0 {
		port = 8080
	}
	logLevel := c.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}
	return &Config{
		port:     port,
		logLevel: logLevel,
		database: orZero(c.Database).trySeal(path + ".database"),
		signing:  nonnil(c.Signing, path+".signing").trySeal(path + ".signing"),
		outputs:  orZero(c.Outputs).trySeal(path + ".outputs"),
		pubsub:   orZero(c.Pubsub).trySeal(path + ".pubsub"),
		sessions: orZero(c.Sessions).trySeal(path + ".sessions"),

		defaultComputeResource: c.DefaultComputeResource,
	}
}

type DatabaseConfigMarshall struct {
	// URL of postgres. Leave it empty for the in-memory database.
	URL string `yaml:"url,omitempty"`
}

func (d *DatabaseConfigMarshall) trySeal(path string) *DatabaseConfig {
	return &DatabaseConfig{url: d.URL}
}

type SigningConfigMarshall struct {
	MasterKey          *MasterKeyConfigMarshall `yaml:"masterKey"`
	RegistrationWindow string                   `yaml:"registrationWindow,omitempty"`
}

func (s *SigningConfigMarshall) trySeal(path string) *SigningConfig {
	return &SigningConfig{
		masterKey:          nonnil(s.MasterKey, path+".masterKey").trySeal(path + ".masterKey"),
		registrationWindow: duration(s.RegistrationWindow, 300*time.Second, path+".registrationWindow"),
	}
}

type MasterKeyConfigMarshall struct {
	File   string                   `yaml:"file,omitempty"`
	Secret *SecretRefConfigMarshall `yaml:"secret,omitempty"`
}

func (m *MasterKeyConfigMarshall) trySeal(path string) *MasterKeyConfig {
	if (m.File == "") == (m.Secret == nil) {
		panic(path + " should have one of file or secret")
	}
	conf := &MasterKeyConfig{file: m.File}
	if m.Secret != nil {
		conf.secret = m.Secret.trySeal(path + ".secret")
	}
	return conf
}

type SecretRefConfigMarshall struct {
	Namespace string `yaml:"namespace"`
	Name      string `yaml:"name"`
	Field     string `yaml:"field,omitempty"`
	CacheTTL  string `yaml:"cacheTTL,omitempty"`
}

func (s *SecretRefConfigMarshall) trySeal(path string) *SecretRefConfig {
	field := s.Field
	if field == "" {
		field = "key"
	}
	return &SecretRefConfig{
		namespace: required(s.Namespace, path+".namespace"),
		name:      required(s.Name, path+".name"),
		field:     field,
		cacheTTL:  duration(s.CacheTTL, time.Minute, path+".cacheTTL"),
	}
}

type OutputsConfigMarshall struct {
	BaseURL         string `yaml:"baseUrl,omitempty"`
	BucketURI       string `yaml:"bucketUri,omitempty"`
	Credentials     string `yaml:"credentials,omitempty"`
	UploadURLExpiry string `yaml:"uploadUrlExpiry,omitempty"`
	Probe           string `yaml:"probe,omitempty"`
}

func (o *OutputsConfigMarshall) trySeal(path string) *OutputsConfig {
	probe := o.Probe
	switch probe {
	case "":
		probe = "http"
	case "http", "bucket":
	default:
		panic(fmt.Sprintf("%s.probe should be http or bucket, but %q", path, probe))
	}
	if o.BucketURI != "" {
		required(o.Credentials, path+".credentials")
		required(o.BaseURL, path+".baseUrl")
	}
	if probe == "bucket" {
		required(o.BucketURI, path+".bucketUri")
	}
	return &OutputsConfig{
		baseURL:         o.BaseURL,
		bucketURI:       o.BucketURI,
		credentials:     o.Credentials,
		uploadURLExpiry: duration(o.UploadURLExpiry, 30*time.Minute, path+".uploadUrlExpiry"),
		probe:           probe,
	}
}

type PubsubConfigMarshall struct {
	Backend string                `yaml:"backend,omitempty"`
	Pubnub  *PubnubConfigMarshall `yaml:"pubnub,omitempty"`
	Kafka   *KafkaConfigMarshall  `yaml:"kafka,omitempty"`
}

func (p *PubsubConfigMarshall) trySeal(path string) *PubsubConfig {
	conf := &PubsubConfig{backend: p.Backend}
	switch p.Backend {
	case "", "none":
		conf.backend = "none"
	case "memory":
	case "pubnub":
		conf.pubnub = nonnil(p.Pubnub, path+".pubnub").trySeal(path + ".pubnub")
	case "kafka":
		conf.kafka = nonnil(p.Kafka, path+".kafka").trySeal(path + ".kafka")
	default:
		panic(fmt.Sprintf("%s.backend should be one of pubnub, kafka, memory or none, but %q", path, p.Backend))
	}
	return conf
}

type PubnubConfigMarshall struct {
	PublishKey   string `yaml:"publishKey"`
	SubscribeKey string `yaml:"subscribeKey"`
	UUID         string `yaml:"uuid,omitempty"`
	Origin       string `yaml:"origin,omitempty"`
}

func (p *PubnubConfigMarshall) trySeal(path string) *PubnubConfig {
	return &PubnubConfig{
		publishKey:   required(p.PublishKey, path+".publishKey"),
		subscribeKey: required(p.SubscribeKey, path+".subscribeKey"),
		uuid:         p.UUID,
		origin:       p.Origin,
	}
}

type KafkaConfigMarshall struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientId string   `yaml:"clientId,omitempty"`
}

func (k *KafkaConfigMarshall) trySeal(path string) *KafkaConfig {
	if len(k.Brokers) == 0 {
		panic(path + ".brokers is required")
	}
	clientId := k.ClientId
	if clientId == "" {
		clientId = "protocaas"
	}
	return &KafkaConfig{
		brokers:  append([]string{}, k.Brokers...),
		topic:    required(k.Topic, path+".topic"),
		clientId: clientId,
	}
}

type SessionsConfigMarshall struct {
	TTL       string `yaml:"ttl,omitempty"`
	GithubAPI string `yaml:"githubApi,omitempty"`
}

func (s *SessionsConfigMarshall) trySeal(path string) *SessionsConfig {
	api := s.GithubAPI
	if api == "" {
		api = "https://api.github.com"
	}
	return &SessionsConfig{
		ttl:       duration(s.TTL, time.Hour, path+".ttl"),
		githubAPI: api,
	}
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func orZero[T any](v *T) *T {
	if v == nil {
		return new(T)
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}

func duration(s string, def time.Duration, path string) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Errorf("%s can not be parsed: %w", path, err))
	}
	if d <= 0 {
		panic(path + " should be positive")
	}
	return d
}
