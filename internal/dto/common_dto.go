package dto

// ErrorResponse mirrors a failed loyalty.Result so clients parse one envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Store       string `json:"store"`
	Cache       string `json:"cache"`
	ClinicCount int    `json:"clinic_count"`
}
