package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kelydev/apiTramite/models"
	"golang.org/x/crypto/bcrypt"
)

// UsuarioRepo stores users. Password hashes are written here and never read back
// into models.Usuario.
type UsuarioRepo struct {
	*table[models.Usuario]
	cost int
}

// NewUsuarioRepo returns the usuario store hashing passwords with the given bcrypt cost.
func NewUsuarioRepo(db *sql.DB, cost int) *UsuarioRepo {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &UsuarioRepo{
		table: &table[models.Usuario]{
			db: db, name: "usuario", idCol: "id_usuario",
			cols:    []string{"username", "id_trabajador", "id_rol", "activo", "created_at", "updated_at"},
			search:  []string{"username"},
			filters: map[string]string{"idRol": "id_rol"},
			orderBy: "username",
			touch:   true,
			scan: func(row scanner) (models.Usuario, error) {
				var u models.Usuario
				err := row.Scan(&u.ID, &u.Username, &u.IDTrabajador, &u.IDRol, &u.Activo, &u.CreatedAt, &u.UpdatedAt)
				return u, err
			},
		},
		cost: cost,
	}
}

// A NULL activo ($5 on insert, $4 on update) means active on insert and unchanged on update.
const (
	usuarioInsert = `INSERT INTO usuario (username, password_hash, id_trabajador, id_rol, activo)
		VALUES ($1, $2, $3, $4, COALESCE($5::boolean, TRUE))
		RETURNING `
	usuarioUpdate = `UPDATE usuario SET username = $1, id_trabajador = $2, id_rol = $3,
		activo = COALESCE($4::boolean, activo),
		password_hash = COALESCE($5, password_hash), updated_at = CURRENT_TIMESTAMP
		WHERE id_usuario = $6
		RETURNING `
)

// Create inserts a new user after hashing the password.
func (r *UsuarioRepo) Create(ctx context.Context, u models.Usuario) (models.Usuario, error) {
	if u.Password == "" {
		return models.Usuario{}, fmt.Errorf("%w: la contraseña es obligatoria", ErrInvalid)
	}
	hash, err := HashPassword(u.Password, r.cost)
	if err != nil {
		return models.Usuario{}, err
	}

	created, err := r.scan(r.db.QueryRowContext(ctx, usuarioInsert+r.selectList(), u.Username, hash, u.IDTrabajador, u.IDRol, u.Activo))
	if err != nil {
		return models.Usuario{}, translate("inserting usuario", err)
	}
	return created, nil
}

// Update modifies a user. The password is only replaced when a new one is supplied.
func (r *UsuarioRepo) Update(ctx context.Context, u models.Usuario) (models.Usuario, error) {
	var hash *string
	if u.Password != "" {
		h, err := HashPassword(u.Password, r.cost)
		if err != nil {
			return models.Usuario{}, err
		}
		hash = &h
	}

	updated, err := r.scan(r.db.QueryRowContext(ctx, usuarioUpdate+r.selectList(), u.Username, u.IDTrabajador, u.IDRol, u.Activo, hash, u.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Usuario{}, ErrNotFound
		}
		return models.Usuario{}, translate("updating usuario", err)
	}
	return updated, nil
}

const sesionQuery = `SELECT u.id_usuario, u.username, r.nombre, t.id_area, u.password_hash, u.activo
	FROM usuario u
	JOIN rol r ON r.id_rol = u.id_rol
	JOIN trabajador t ON t.id_trabajador = u.id_trabajador`

// FindSesionByUsername resolves the session identity and password hash of a user.
func (r *UsuarioRepo) FindSesionByUsername(ctx context.Context, username string) (*models.Sesion, error) {
	return r.findSesion(ctx, sesionQuery+` WHERE u.username = $1`, username)
}

// GetSesion resolves the session identity of a user by id.
func (r *UsuarioRepo) GetSesion(ctx context.Context, id int) (*models.Sesion, error) {
	return r.findSesion(ctx, sesionQuery+` WHERE u.id_usuario = $1`, id)
}

func (r *UsuarioRepo) findSesion(ctx context.Context, query string, arg any) (*models.Sesion, error) {
	var s models.Sesion
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&s.UserID, &s.Username, &s.RolName, &s.AreaID, &s.PasswordHash, &s.Activo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting user session: %w", err)
	}
	return &s, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash compares a plaintext password with a stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// EnsureAdmin creates the "admin" user bound to the seeded system worker when
// no user exists yet. It reports whether a user was created.
func (r *UsuarioRepo) EnsureAdmin(ctx context.Context, password string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM usuario)`).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking existing users: %w", err)
	}
	if exists {
		return false, nil
	}
	hash, err := HashPassword(password, r.cost)
	if err != nil {
		return false, err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO usuario (username, password_hash, id_trabajador, id_rol, activo)
		SELECT 'admin', $1, t.id_trabajador, r.id_rol, TRUE
		FROM trabajador t, rol r
		WHERE t.dni = '00000000' AND r.nombre = $2`, hash, models.RolAdministrador)
	if err != nil {
		return false, translate("inserting admin user", err)
	}
	return true, nil
}
