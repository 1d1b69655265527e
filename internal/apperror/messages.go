package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError:   "Configuration error",
	CodeConfigurationMissing: "Required configuration value is missing",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	CodeChainConnectionFailed: "Failed to connect to chain RPC endpoint",
	CodeTransportError:        "RPC transport error",
	CodeContractCallFailed:    "Contract call failed",
	CodeGasEstimationFailed:   "Gas estimation failed",
	CodeTokenMetadataFailed:   "Failed to read token metadata",
	CodeSignerUnavailable:     "No signing key configured",
	CodeReceiptTimeout:        "Timed out waiting for transaction receipt",

	CodeQuoteUnavailable: "Venue could not quote pair",
	CodeUnknownVenue:     "Unknown venue",
	CodeUnknownVenueKind: "Unknown venue kind",

	CodeLiquidityInsufficient:     "Lending reserve cannot supply the requested amount",
	CodeLiquidityQueryFailed:      "Lending reserve query failed",
	CodeUnsafeToken:               "Token is not on the flash borrow allow-list",
	CodeInsufficientWalletBalance: "Wallet balance does not cover the trade amount",
	CodeExecutionReverted:         "Transaction reverted",
	CodeApprovalFailed:            "Token approval failed",
	CodeExecutionDisabled:         "Execution is disabled",

	CodeStateStoreFailed: "Performance state store failed",
	CodeJournalFailed:    "Execution journal write failed",
	CodeNotifyFailed:     "Notification delivery failed",
	CodeKeyFileInvalid:   "Encrypted key file is invalid",

	CodeCircuitOpen: "Circuit breaker is open",
}
