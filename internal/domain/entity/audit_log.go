package entity

import "time"

// Acciones registradas en la bitácora de auditoría.
const (
	AuditQuantityTaken    = "quantity_taken"
	AuditQuantityAdded    = "quantity_added"
	AuditLocationAssigned = "location_assigned"
	AuditLocationRemoved  = "location_removed"
)

// GuestActor usuario por defecto cuando la petición no trae identidad.
const GuestActor = "Guest"

// AuditLog entrada inmutable de la bitácora: un cambio de estado sobre un producto.
// QuantityBefore/QuantityAfter son nil en acciones que no tocan la cantidad.
type AuditLog struct {
	ID             string
	Action         string
	ProductID      string
	ProductNumber  string
	QuantityBefore *int
	QuantityAfter  *int
	QuantityChange int
	Notes          string
	User           string
	CreatedAt      time.Time
}

// NewQuantityAudit construye una entrada de cambio de cantidad.
func NewQuantityAudit(action string, p *Product, before, after int, notes, user string, now time.Time) *AuditLog {
	return &AuditLog{
		Action:         action,
		ProductID:      p.ID,
		ProductNumber:  p.ProductNumber,
		QuantityBefore: &before,
		QuantityAfter:  &after,
		QuantityChange: after - before,
		Notes:          notes,
		User:           user,
		CreatedAt:      now,
	}
}

// NewLocationAudit construye una entrada de cambio de ubicación (sin cantidades).
func NewLocationAudit(action string, p *Product, notes, user string, now time.Time) *AuditLog {
	return &AuditLog{
		Action:        action,
		ProductID:     p.ID,
		ProductNumber: p.ProductNumber,
		Notes:         notes,
		User:          user,
		CreatedAt:     now,
	}
}
