package types

// ErrorEnvelope is the wire shape for every failed request.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}
