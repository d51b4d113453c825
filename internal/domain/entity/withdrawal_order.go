package entity

import "time"

// WithdrawalLine resultado por producto de un retiro.
type WithdrawalLine struct {
	ProductNumber string `json:"product_number"`
	Name          string `json:"name,omitempty"`
	Category      string `json:"category,omitempty"`
	OldQuantity   int    `json:"old_quantity"`
	NewQuantity   int    `json:"new_quantity"`
	QuantityTaken int    `json:"quantity_taken"`
}

// WithdrawalOrder registro inmutable de un lote de retiro completado.
type WithdrawalOrder struct {
	ID              string
	OrderNumber     string
	Lines           []WithdrawalLine
	TotalProducts   int // líneas con QuantityTaken > 0
	TotalQuantities int
	RecipientName   *string
	User            string
	CreatedAt       time.Time
}

// ReturnLine resultado por producto de una devolución.
type ReturnLine struct {
	ProductNumber    string `json:"product_number"`
	ProductName      string `json:"product_name"`
	QuantityBefore   int    `json:"quantity_before"`
	QuantityReturned int    `json:"quantity_returned"`
	QuantityAfter    int    `json:"quantity_after"`
}

// ProductReturn registro inmutable de una devolución que reingresa stock.
type ProductReturn struct {
	ID              string
	ReturnNumber    string
	Lines           []ReturnLine
	TotalProducts   int
	TotalQuantities int
	ReturnReason    *string
	ReturnedBy      *string
	Notes           *string
	User            string
	CreatedAt       time.Time
}
