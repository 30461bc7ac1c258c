package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeInvalidPairFormat: "Invalid trading pair format",

	CodeUnsupportedExchange: "Unsupported exchange identifier",
	CodeClientUnavailable:   "Exchange client unavailable, venue is cooling down",
	CodeClientInitFailed:    "Exchange client initialization failed",

	CodeFetchFailed:    "Failed to fetch market data from venue",
	CodeVenueAPIError:  "Venue API error",
	CodeVenueRateLimit: "Venue rate limit exceeded",

	CodeCacheUnavailable: "Cache unavailable",
	CodeCacheMiss:        "Cache miss",

	CodeSpreadCalculationError: "Spread calculation error",

	CodeTradingInfoFailed: "Failed to fetch trading info",

	CodeCircuitOpen: "Circuit breaker is open",

	CodeCoinListQueryFailed: "Coin list query failed",

	CodePublishFailed: "Failed to publish opportunity",
}
