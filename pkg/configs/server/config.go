package server

import "time"

// Config of protocaasd and loops.
//
// to get `Config` instance, use `ConfigMarshall.TrySeal()` or `Unmarshal`.
type Config struct {
	port     int32
	logLevel string
	database *DatabaseConfig
	signing  *SigningConfig
	outputs  *OutputsConfig
	pubsub   *PubsubConfig
	sessions *SessionsConfig

	defaultComputeResource string
}

func (c *Config) Port() int32 {
	return c.port
}

// LogLevel is one of debug, info, warn, error and off.
func (c *Config) LogLevel() string {
	return c.logLevel
}

func (c *Config) Database() *DatabaseConfig {
	return c.database
}

func (c *Config) Signing() *SigningConfig {
	return c.signing
}

func (c *Config) Outputs() *OutputsConfig {
	return c.outputs
}

func (c *Config) Pubsub() *PubsubConfig {
	return c.pubsub
}

func (c *Config) Sessions() *SessionsConfig {
	return c.sessions
}

// DefaultComputeResource is for workspaces without their own compute resource.
// It can be empty.
func (c *Config) DefaultComputeResource() string {
	return c.defaultComputeResource
}

type DatabaseConfig struct {
	url string
}

// URL of postgres. Empty means the in-memory database.
func (d *DatabaseConfig) URL() string {
	return d.url
}

func (d *DatabaseConfig) InMemory() bool {
	return d.url == ""
}

type SigningConfig struct {
	masterKey          *MasterKeyConfig
	registrationWindow time.Duration
}

func (s *SigningConfig) MasterKey() *MasterKeyConfig {
	return s.masterKey
}

// RegistrationWindow is how far registration codes can be from now. default = 300s
func (s *SigningConfig) RegistrationWindow() time.Duration {
	return s.registrationWindow
}

// MasterKeyConfig tells where the master signing key is. One of File and Secret is set.
type MasterKeyConfig struct {
	file   string
	secret *SecretRefConfig
}

func (m *MasterKeyConfig) File() string {
	return m.file
}

func (m *MasterKeyConfig) Secret() *SecretRefConfig {
	return m.secret
}

type SecretRefConfig struct {
	namespace string
	name      string
	field     string
	cacheTTL  time.Duration
}

func (s *SecretRefConfig) Namespace() string {
	return s.namespace
}

func (s *SecretRefConfig) Name() string {
	return s.name
}

// Field of the secret holding the key. default = "key"
func (s *SecretRefConfig) Field() string {
	return s.field
}

// CacheTTL of the key read from the secret. default = 1m
func (s *SecretRefConfig) CacheTTL() time.Duration {
	return s.cacheTTL
}

type OutputsConfig struct {
	baseURL         string
	bucketURI       string
	credentials     string
	uploadURLExpiry time.Duration
	probe           string
}

// BaseURL is the public URL prefix of the output bucket.
func (o *OutputsConfig) BaseURL() string {
	return o.baseURL
}

// BucketURI is like "r2://bucket-name/...". Empty means uploading is not available.
func (o *OutputsConfig) BucketURI() string {
	return o.bucketURI
}

// Credentials of the bucket, as JSON.
func (o *OutputsConfig) Credentials() string {
	return o.credentials
}

// UploadURLExpiry is the lifetime of upload URLs. default = 30m
func (o *OutputsConfig) UploadURLExpiry() time.Duration {
	return o.uploadURLExpiry
}

// Probe is how sizes of outputs are found out: "http" (HEAD request) or "bucket". default = "http"
func (o *OutputsConfig) Probe() string {
	return o.probe
}

type PubsubConfig struct {
	backend string
	pubnub  *PubnubConfig
	kafka   *KafkaConfig
}

// Backend is one of "pubnub", "kafka", "memory" and "none".
func (p *PubsubConfig) Backend() string {
	return p.backend
}

// Pubnub is not nil when Backend is "pubnub".
func (p *PubsubConfig) Pubnub() *PubnubConfig {
	return p.pubnub
}

// Kafka is not nil when Backend is "kafka".
func (p *PubsubConfig) Kafka() *KafkaConfig {
	return p.kafka
}

type PubnubConfig struct {
	publishKey   string
	subscribeKey string
	uuid         string
	origin       string
}

func (p *PubnubConfig) PublishKey() string {
	return p.publishKey
}

func (p *PubnubConfig) SubscribeKey() string {
	return p.subscribeKey
}

func (p *PubnubConfig) UUID() string {
	return p.uuid
}

func (p *PubnubConfig) Origin() string {
	return p.origin
}

type KafkaConfig struct {
	brokers  []string
	topic    string
	clientId string
}

func (k *KafkaConfig) Brokers() []string {
	return append([]string{}, k.brokers...)
}

func (k *KafkaConfig) Topic() string {
	return k.topic
}

func (k *KafkaConfig) ClientId() string {
	return k.clientId
}

type SessionsConfig struct {
	ttl       time.Duration
	githubAPI string
}

// TTL of resolved access tokens. default = 1h
func (s *SessionsConfig) TTL() time.Duration {
	return s.ttl
}

func (s *SessionsConfig) GithubAPI() string {
	return s.githubAPI
}
