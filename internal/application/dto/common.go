package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusResponse estado resultante de una operación sobre un documento.
type StatusResponse struct {
	Status string `json:"status"`
}
