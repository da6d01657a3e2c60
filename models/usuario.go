package models

import "time"

// Role names with special meaning in the API.
const (
	RolAdministrador = "ADMINISTRADOR"
)

// Usuario represents a user in the application database.
// Password is accepted on input and never written back in responses.
// A nil Activo means active on create and unchanged on update.
type Usuario struct {
	ID           int       `json:"idUsuario"`
	Username     string    `json:"username" validate:"required,min=3,max=60"`
	Password     string    `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	IDTrabajador int       `json:"idTrabajador" validate:"required,gt=0"`
	IDRol        int       `json:"idRol" validate:"required,gt=0"`
	Activo       *bool     `json:"activo"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u Usuario) EntityID() int { return u.ID }

// IsActivo reports whether the user may log in.
func (u Usuario) IsActivo() bool { return u.Activo == nil || *u.Activo }

func (u Usuario) WithID(id int) Usuario { u.ID = id; return u }

// Credentials represents the data needed for login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Sesion is the identity resolved for a user: what the panel keeps in session storage.
type Sesion struct {
	UserID       int    `json:"userId"`
	Username     string `json:"username"`
	RolName      string `json:"rolName"`
	AreaID       int    `json:"areaId"`
	PasswordHash string `json:"-"`
	Activo       bool   `json:"-"`
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	RolName      string `json:"rolName"`
	UserID       int    `json:"userId"`
	AreaID       int    `json:"areaId"`
}

// RefreshRequest carries the refresh token to exchange.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
