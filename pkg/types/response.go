package types

// SuccessEnvelope wraps every successful API payload.
type SuccessEnvelope struct {
	Status bool `json:"Status"`
	Data   any  `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every failed API response.
type ErrorEnvelope struct {
	Status bool     `json:"Status"`
	Errors APIError `json:"Errors"`
}

// CountResponse reports how many rows an operation touched.
type CountResponse struct {
	Count int64 `json:"count"`
}
