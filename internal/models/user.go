package models

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleConsultant Role = "consultant"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleConsultant
}

// User é um membro da equipe interna. Password guarda o hash bcrypt
// (registros antigos podem trazer texto puro, ver auth.CheckPassword).
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserPatch: ponteiros distinguem "omitido" de "informado".
type UserPatch struct {
	Username *string
	Password *string
	Name     *string
	Email    *string
	Role     *Role
}
