package contracts

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is returned by the per-service health endpoints
type HealthResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Enabled bool   `json:"enabled"`
}
