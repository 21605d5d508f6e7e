package users

import (
	"context"

	"highlight-api/internal/domain/access"
	"highlight-api/internal/domain/projects"
	"highlight-api/internal/domain/users"
)

func BuildUserDTO(u users.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		AuthProvider: u.AuthProvider,
		HasPassword:  u.Password != nil && *u.Password != "",
	}
}

func BuildProjectAccess(ctx context.Context, resolver *access.Resolver, list []projects.Project) []ProjectAccessDTO {
	out := make([]ProjectAccessDTO, 0, len(list))
	for _, p := range list {
		id := p.ID
		out = append(out, ProjectAccessDTO{
			ID:     p.ID,
			Title:  p.Title,
			Access: access.PolicyFor(resolver.CurrentTier(ctx, &id)),
		})
	}
	return out
}
