package dto

import "time"

// BatchItemRequest línea de un lote: número de producto y cantidad.
type BatchItemRequest struct {
	Number   string        `json:"number"`
	Quantity QuantityField `json:"quantity"`
}

// WithdrawalRequest body para POST /api/withdrawals.
type WithdrawalRequest struct {
	Items         []BatchItemRequest `json:"items"`
	RecipientName string             `json:"recipient_name,omitempty"`
	ConfirmZero   bool               `json:"confirm_zero,omitempty"`
}

// WithdrawalLineResponse resultado por producto de un retiro.
type WithdrawalLineResponse struct {
	ProductNumber string `json:"product_number"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	OldQuantity   int    `json:"old_quantity"`
	NewQuantity   int    `json:"new_quantity"`
	QuantityTaken int    `json:"quantity_taken"`
}

// WithdrawalResponse orden de retiro creada.
type WithdrawalResponse struct {
	OrderNumber     string                   `json:"order_number"`
	Products        []WithdrawalLineResponse `json:"products"`
	TotalProducts   int                      `json:"total_products"`
	TotalQuantities int                      `json:"total_quantities"`
	RecipientName   *string                  `json:"recipient_name,omitempty"`
	User            string                   `json:"user"`
	CreatedAt       time.Time                `json:"created_at"`
}

// ReturnRequest body para POST /api/returns.
type ReturnRequest struct {
	Items        []BatchItemRequest `json:"items"`
	ReturnReason string             `json:"return_reason,omitempty"`
	ReturnedBy   string             `json:"returned_by,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}

// ReturnLineResponse resultado por producto de una devolución.
type ReturnLineResponse struct {
	ProductNumber    string `json:"product_number"`
	ProductName      string `json:"product_name"`
	QuantityBefore   int    `json:"quantity_before"`
	QuantityReturned int    `json:"quantity_returned"`
	QuantityAfter    int    `json:"quantity_after"`
}

// ReturnResponse devolución creada.
type ReturnResponse struct {
	ReturnNumber    string               `json:"return_number"`
	Products        []ReturnLineResponse `json:"products"`
	TotalProducts   int                  `json:"total_products"`
	TotalQuantities int                  `json:"total_quantities"`
	ReturnReason    *string              `json:"return_reason,omitempty"`
	ReturnedBy      *string              `json:"returned_by,omitempty"`
	Notes           *string              `json:"notes,omitempty"`
	User            string               `json:"user"`
	CreatedAt       time.Time            `json:"created_at"`
}
