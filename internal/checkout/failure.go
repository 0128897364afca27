package checkout

// FailureReason classifies a gateway failure code into user-facing guidance.
type FailureReason struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// FailureSeverity groups failure codes by who can act on them.
type FailureSeverity string

const (
	// SeverityTemporary covers transient infrastructure problems.
	SeverityTemporary FailureSeverity = "temporary"
	// SeverityUser covers problems only the payer can fix.
	SeverityUser FailureSeverity = "user"
	// SeverityUnknown covers everything else.
	SeverityUnknown FailureSeverity = "unknown"
)

const (
	FailureBadRequest       = "BAD_REQUEST_ERROR"
	FailureGateway          = "GATEWAY_ERROR"
	FailureNetwork          = "NETWORK_ERROR"
	FailureServer           = "SERVER_ERROR"
	FailureAuthentication   = "AUTHENTICATION_ERROR"
	FailureAuthorization    = "AUTHORIZATION_ERROR"
	FailureInvalidRequest   = "INVALID_REQUEST_ERROR"
	FailureRateLimit        = "RATE_LIMIT_ERROR"
	FailureDeclined         = "PAYMENT_DECLINED"
	FailureInsufficientFund = "INSUFFICIENT_FUNDS"
	FailureCardExpired      = "CARD_EXPIRED"
	FailureInvalidCard      = "INVALID_CARD"
	FailureUnknown          = "UNKNOWN_ERROR"
)

var failureReasons = map[string]FailureReason{
	FailureBadRequest: {
		Code:        FailureBadRequest,
		Description: "Invalid payment request",
		Suggestion:  "Please try again or contact support if the issue persists.",
	},
	FailureGateway: {
		Code:        FailureGateway,
		Description: "Payment gateway error",
		Suggestion:  "This is usually a temporary issue. Please try again in a few minutes.",
	},
	FailureNetwork: {
		Code:        FailureNetwork,
		Description: "Network connection error",
		Suggestion:  "Check your internet connection and try again.",
	},
	FailureServer: {
		Code:        FailureServer,
		Description: "Server error occurred",
		Suggestion:  "This is a temporary issue on our end. Please try again shortly.",
	},
	FailureAuthentication: {
		Code:        FailureAuthentication,
		Description: "Payment authentication failed",
		Suggestion:  "Please verify your payment details and try again.",
	},
	FailureAuthorization: {
		Code:        FailureAuthorization,
		Description: "Payment authorization failed",
		Suggestion:  "Your payment was declined. Please try a different payment method or contact your bank.",
	},
	FailureInvalidRequest: {
		Code:        FailureInvalidRequest,
		Description: "Invalid payment information",
		Suggestion:  "Please check your payment details and try again.",
	},
	FailureRateLimit: {
		Code:        FailureRateLimit,
		Description: "Too many attempts",
		Suggestion:  "Please wait a few minutes before trying again.",
	},
	FailureDeclined: {
		Code:        FailureDeclined,
		Description: "Payment was declined by your bank",
		Suggestion:  "Please try a different payment method or contact your bank for assistance.",
	},
	FailureInsufficientFund: {
		Code:        FailureInsufficientFund,
		Description: "Insufficient funds in your account",
		Suggestion:  "Please check your account balance or try a different payment method.",
	},
	FailureCardExpired: {
		Code:        FailureCardExpired,
		Description: "Your card has expired",
		Suggestion:  "Please use a different card or update your card information.",
	},
	FailureInvalidCard: {
		Code:        FailureInvalidCard,
		Description: "Invalid card details",
		Suggestion:  "Please check your card number, expiry date, and CVV, then try again.",
	},
}

// LookupFailure resolves a gateway failure code. Unknown codes collapse to
// UNKNOWN_ERROR carrying the raw message as the description.
func LookupFailure(code, message string) FailureReason {
	if reason, ok := failureReasons[code]; ok {
		return reason
	}
	description := message
	if description == "" {
		description = "An unknown error occurred during payment"
	}
	return FailureReason{
		Code:        FailureUnknown,
		Description: description,
		Suggestion:  "Please try again or contact our support team for assistance.",
	}
}

// Retryable reports whether offering a retry makes sense for the code.
// Funds, expiry, and card-number problems do not fix themselves.
func Retryable(code string) bool {
	switch code {
	case FailureInsufficientFund, FailureCardExpired, FailureInvalidCard:
		return false
	default:
		return true
	}
}

// Severity classifies the code for presentation.
func Severity(code string) FailureSeverity {
	switch code {
	case FailureGateway, FailureNetwork, FailureServer, FailureRateLimit:
		return SeverityTemporary
	case FailureInsufficientFund, FailureCardExpired, FailureInvalidCard, FailureDeclined:
		return SeverityUser
	default:
		return SeverityUnknown
	}
}
