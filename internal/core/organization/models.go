package organization

import (
	"github.com/google/uuid"

	"github.com/metacatalog/catalog/internal/core/catalog"
)

type Organization struct {
	ID                uuid.UUID `json:"id"`
	OrganizationName  string    `json:"organizationName"`
	OrganizationEmail string    `json:"organizationEmail"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	catalog.Timestamps
}

type CreateOrganizationRequest struct {
	OrganizationName  string `json:"organizationName" binding:"required,max=100"`
	OrganizationEmail string `json:"organizationEmail" binding:"required,email"`
	FirstName         string `json:"firstName" binding:"required,max=100"`
	LastName          string `json:"lastName" binding:"required,max=100"`
}

// UpdateOrganizationRequest cannot change the email address.
type UpdateOrganizationRequest struct {
	OrganizationName *string `json:"organizationName" binding:"omitempty,max=100"`
	FirstName        *string `json:"firstName" binding:"omitempty,max=100"`
	LastName         *string `json:"lastName" binding:"omitempty,max=100"`
}

type Filter struct {
	OrganizationName  *string `json:"organizationName"`
	OrganizationEmail *string `json:"organizationEmail"`
}

type ListOrganizationsResponse struct {
	Organizations []*Organization `json:"organizations"`
	Total         int             `json:"total"`
}
