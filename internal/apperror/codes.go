package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Market-data error codes
const (
	// Pair parsing
	CodeInvalidPairFormat Code = "INVALID_PAIR_FORMAT"

	// Exchange client registry
	CodeUnsupportedExchange Code = "UNSUPPORTED_EXCHANGE"
	CodeClientUnavailable   Code = "CLIENT_UNAVAILABLE"
	CodeClientInitFailed    Code = "CLIENT_INIT_FAILED"

	// Quote fetching
	CodeFetchFailed    Code = "FETCH_FAILED"
	CodeVenueAPIError  Code = "VENUE_API_ERROR"
	CodeVenueRateLimit Code = "VENUE_RATE_LIMITED"

	// Cache
	CodeCacheUnavailable Code = "CACHE_UNAVAILABLE"
	CodeCacheMiss        Code = "CACHE_MISS"

	// Spread engine
	CodeSpreadCalculationError Code = "SPREAD_CALCULATION_ERROR"

	// Trading info
	CodeTradingInfoFailed Code = "TRADING_INFO_FAILED"

	// Circuit breaker
	CodeCircuitOpen Code = "CIRCUIT_OPEN"

	// Coin lists
	CodeCoinListQueryFailed Code = "COIN_LIST_QUERY_FAILED"

	// Opportunity publication
	CodePublishFailed Code = "PUBLISH_FAILED"
)
