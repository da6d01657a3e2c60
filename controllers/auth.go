package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/kelydev/apiTramite/auth"
	"github.com/kelydev/apiTramite/metrics"
	"github.com/kelydev/apiTramite/middleware"
	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/repository"
	"github.com/kelydev/apiTramite/utils"
)

const msgBadCredentials = "Usuario o contraseña incorrectos"

// SesionStore resolves the identity behind a login or a token.
type SesionStore interface {
	FindSesionByUsername(ctx context.Context, username string) (*models.Sesion, error)
	GetSesion(ctx context.Context, id int) (*models.Sesion, error)
}

// AuthController handles login, token refresh and the current-user endpoint.
type AuthController struct {
	Users   SesionStore
	Tokens  *auth.TokenManager
	Metrics *metrics.Metrics
}

func (c *AuthController) countLogin(result string) {
	if c.Metrics != nil {
		c.Metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

// Login verifies username and password and issues a token pair.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !utils.DecodeAndValidate(w, r, &creds) {
		return
	}

	sesion, err := c.Users.FindSesionByUsername(r.Context(), creds.Username)
	if errors.Is(err, repository.ErrNotFound) {
		c.countLogin("failure")
		utils.RespondError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("username", creds.Username).Msg("error looking up user")
		utils.RespondError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	if !repository.CheckPasswordHash(creds.Password, sesion.PasswordHash) {
		c.countLogin("failure")
		log.Info().Str("username", creds.Username).Msg("login rejected")
		utils.RespondError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	if !sesion.Activo {
		c.countLogin("inactive")
		utils.RespondError(w, http.StatusForbidden, "El usuario está inactivo")
		return
	}

	c.issue(w, *sesion)
	c.countLogin("success")
	log.Info().Int("user_id", sesion.UserID).Str("rol", sesion.RolName).Msg("user logged in")
}

// Refresh exchanges a refresh token for a new pair. Role and area are read
// again so changes made by an administrator apply from the next refresh.
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if !utils.DecodeAndValidate(w, r, &req) {
		return
	}

	claims, err := c.Tokens.Parse(req.RefreshToken, auth.TypeRefresh)
	if err != nil {
		log.Debug().Err(err).Msg("refresh token rejected")
		utils.RespondError(w, http.StatusUnauthorized, "Token de actualización inválido o expirado")
		return
	}

	sesion, err := c.Users.GetSesion(r.Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.RespondError(w, http.StatusUnauthorized, "El usuario ya no existe")
			return
		}
		respondError(w, r, err, "")
		return
	}
	if !sesion.Activo {
		utils.RespondError(w, http.StatusForbidden, "El usuario está inactivo")
		return
	}

	c.issue(w, *sesion)
}

func (c *AuthController) issue(w http.ResponseWriter, s models.Sesion) {
	pair, err := c.Tokens.Issue(s)
	if err != nil {
		log.Error().Err(err).Int("user_id", s.UserID).Msg("error signing tokens")
		utils.RespondError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	utils.RespondJSON(w, http.StatusOK, pair)
}

// Me returns the session of the authenticated user.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, "No autenticado")
		return
	}
	sesion, err := c.Users.GetSesion(r.Context(), claims.UserID())
	if err != nil {
		respondError(w, r, err, "Usuario no encontrado")
		return
	}
	utils.RespondJSON(w, http.StatusOK, sesion)
}
