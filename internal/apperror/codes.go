package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError   Code = "CONFIGURATION_ERROR"
	CodeConfigurationMissing Code = "CONFIGURATION_MISSING"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Chain access error codes
const (
	CodeChainConnectionFailed Code = "CHAIN_CONNECTION_FAILED"
	CodeTransportError        Code = "TRANSPORT_ERROR"
	CodeContractCallFailed    Code = "CONTRACT_CALL_FAILED"
	CodeGasEstimationFailed   Code = "GAS_ESTIMATION_FAILED"
	CodeTokenMetadataFailed   Code = "TOKEN_METADATA_FAILED"
	CodeSignerUnavailable     Code = "SIGNER_UNAVAILABLE"
	CodeReceiptTimeout        Code = "RECEIPT_TIMEOUT"
)

// Pricing error codes
const (
	CodeQuoteUnavailable Code = "QUOTE_UNAVAILABLE"
	CodeUnknownVenue     Code = "UNKNOWN_VENUE"
	CodeUnknownVenueKind Code = "UNKNOWN_VENUE_KIND"
)

// Execution error codes
const (
	CodeLiquidityInsufficient     Code = "LIQUIDITY_INSUFFICIENT"
	CodeLiquidityQueryFailed      Code = "LIQUIDITY_QUERY_FAILED"
	CodeUnsafeToken               Code = "UNSAFE_TOKEN"
	CodeInsufficientWalletBalance Code = "INSUFFICIENT_WALLET_BALANCE"
	CodeExecutionReverted         Code = "EXECUTION_REVERTED"
	CodeApprovalFailed            Code = "APPROVAL_FAILED"
	CodeExecutionDisabled         Code = "EXECUTION_DISABLED"
)

// Persistence and notification error codes
const (
	CodeStateStoreFailed Code = "STATE_STORE_FAILED"
	CodeJournalFailed    Code = "JOURNAL_FAILED"
	CodeNotifyFailed     Code = "NOTIFY_FAILED"
	CodeKeyFileInvalid   Code = "KEY_FILE_INVALID"
)

// Circuit breaker error codes
const (
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
