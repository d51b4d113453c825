package dto

// ErrorResponse cuerpo de error HTTP. Details lleva el detalle estructurado del rechazo
// (líneas inválidas, faltantes de stock, capacidad de columna).
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}
