package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	CacheKeyPrefixSchema = "schema:"
)

// Webhook headers used by the storefront platform.
const (
	HeaderWebhookSignature = "X-Storefront-Hmac-Sha256"
	HeaderShopDomain       = "X-Storefront-Shop-Domain"
	HeaderWebhookTopic     = "X-Storefront-Topic"
)

const (
	DefaultMongoDBName = "shopsync"
)

const (
	PostgresMaxOpenConns    = 25
	PostgresMaxIdleConns    = 5
	PostgresConnMaxLifetime = 30 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultSchemaTTLSeconds = 3600
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)

// Sentinel values the storefront platform writes for absent customer data.
const (
	SentinelEmail   = "no-email@manual-order.com"
	SentinelNoName  = "No name"
	SentinelAddress = "No address provided"
)

const (
	TenantStorePostgres = "postgres"
	TenantStoreMongoDB  = "mongodb"
)
