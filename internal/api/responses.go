package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type CountResponse struct {
	Count int `json:"count" example:"3"`
}

// ListResponse wraps paginated collections.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
