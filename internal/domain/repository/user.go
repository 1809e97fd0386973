package repository

import "context"

// User representa un usuario del sistema externo de gestión de usuarios.
// Este core nunca es dueño de su ciclo de vida: solo lee y escribe los
// campos que el directorio expone.
type User struct {
	ID       string
	Username string
	Email    string
	Fields   map[string]string
}

// CreateUserInput contiene los datos mínimos para crear un usuario.
type CreateUserInput struct {
	Username string
	Email    string
}

// UserDirectory define el contrato con el directorio externo de usuarios.
type UserDirectory interface {
	// FindByEmail busca un usuario por email.
	// Retorna ErrNotFound si no existe.
	FindByEmail(ctx context.Context, email string) (string, error)

	// Create crea un nuevo usuario y retorna su ID.
	Create(ctx context.Context, input CreateUserInput) (string, error)

	// SetUserField guarda un atributo arbitrario en el usuario
	// (ej: "acmeId" -> provider user id).
	SetUserField(ctx context.Context, userID, field, value string) error

	// GetUserField lee un atributo del usuario.
	// Retorna ErrNotFound si el usuario o el campo no existen.
	GetUserField(ctx context.Context, userID, field string) (string, error)
}

// GroupService define el contrato con el servicio externo de grupos.
type GroupService interface {
	// JoinGroup agrega el usuario al grupo indicado.
	JoinGroup(ctx context.Context, group, userID string) error
}
