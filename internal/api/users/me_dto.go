package users

import "highlight-api/internal/domain/access"

type MeResponse struct {
	User     UserDTO            `json:"user"`
	Projects []ProjectAccessDTO `json:"projects"`
}

type UserDTO struct {
	ID           uint   `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	AuthProvider string `json:"auth_provider"`
	HasPassword  bool   `json:"has_password"`
}

type ProjectAccessDTO struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Access access.Policy `json:"access"`
}
