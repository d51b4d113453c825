package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/allocator"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// Cabeceras de identidad del llamador. No hay autenticación: solo identifican actor y sesión.
const (
	HeaderUser      = "X-User"
	HeaderSessionID = "X-Session-ID"
)

// Locals keys para el actor y la sesión en Fiber.
const (
	LocalUser      = "user"
	LocalSessionID = "session_id"
)

// CallerMiddleware extrae X-User (por defecto "Guest") y X-Session-ID (por defecto el usuario) a c.Locals.
func CallerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := strings.TrimSpace(c.Get(HeaderUser))
		if user == "" {
			user = entity.GuestActor
		}
		session := strings.TrimSpace(c.Get(HeaderSessionID))
		if session == "" {
			session = user
		}
		c.Locals(LocalUser, user)
		c.Locals(LocalSessionID, session)
		return c.Next()
	}
}

// GetUser devuelve el actor del contexto (después de CallerMiddleware).
func GetUser(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUser).(string)
	if s == "" {
		return entity.GuestActor
	}
	return s
}

// GetSessionID devuelve la sesión del contexto (después de CallerMiddleware).
func GetSessionID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalSessionID).(string)
	return s
}

// GetCaller identidad para el asignador.
func GetCaller(c *fiber.Ctx) allocator.Caller {
	return allocator.Caller{User: GetUser(c), SessionID: GetSessionID(c)}
}
