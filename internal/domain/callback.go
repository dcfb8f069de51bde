package domain

// CallbackStatus is the normalized outcome reported by a gateway callback
type CallbackStatus string

const (
	CallbackStatusSuccess CallbackStatus = "success"
	CallbackStatusFailed  CallbackStatus = "failed"
)

// Well-known callback parameter names shared by all gateways.
// Individual handlers may read additional provider-specific parameters.
const (
	CallbackParamStatus        = "status"
	CallbackParamTransactionID = "transaction_id"
	CallbackParamErrorMessage  = "error_message"
	CallbackParamErrorCode     = "error_code"
	CallbackParamToken         = "token"
)

// CallbackRequest is a gateway callback reduced to its parameters.
// HTTP handlers merge query string and form values into Params before the
// callback reaches any gateway-specific handler.
type CallbackRequest struct {
	Params map[string]string
}

// Get returns the named parameter or the empty string
func (r *CallbackRequest) Get(key string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[key]
}

// Has returns true if the named parameter is present and non-empty
func (r *CallbackRequest) Has(key string) bool {
	return r.Get(key) != ""
}

// CallbackResult is the normalized outcome produced by a callback handler.
// Orchestration applies it to the payment without knowing which provider
// produced it.
type CallbackResult struct {
	Status          CallbackStatus
	TransactionID   string
	ErrorMessage    string
	ErrorCode       string
	GatewayResponse string // Opaque raw payload for audit
}

// IsSuccess returns true if the normalized outcome is a success
func (r *CallbackResult) IsSuccess() bool {
	return r.Status == CallbackStatusSuccess
}
