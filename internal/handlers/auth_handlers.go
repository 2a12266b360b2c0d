package handlers

import (
	"net/http"

	"github.com/Werneck0live/cadastro-leads/internal/auth"
	"github.com/Werneck0live/cadastro-leads/internal/models"
	"github.com/Werneck0live/cadastro-leads/internal/utils"
)

// POST /api/auth/login -> {"user": {...}} sem a senha
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginDTO
	if !decode(w, r, &in) {
		return
	}
	u, err := a.Auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"user": toUserResponse(u)})
}

func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in UserCreateDTO
	if !decode(w, r, &in) {
		return
	}
	u, err := a.Auth.CreateUser(r.Context(), auth.CreateUserInput{
		Username: in.Username,
		Password: in.Password,
		Name:     in.Name,
		Email:    in.Email,
		Role:     models.Role(in.Role),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toUserResponse(u))
}

func (a *API) ListConsultants(w http.ResponseWriter, r *http.Request) {
	users := a.Users.ListConsultants(r.Context())
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := a.Users.DeleteUser(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	message200(w, "user deleted")
}
