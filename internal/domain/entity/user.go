package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// User operador o administrador de la bodega.
type User struct {
	ID           int64
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	DisplayName  string
	Role         string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
