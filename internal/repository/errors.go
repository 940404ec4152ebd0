package repository

import (
	"fmt"
	"strings"

	"github.com/Dhoini/storefront-service/internal/domain"
	"github.com/google/uuid"
)

// Entity names used in error messages and cache keys
const (
	EntityCustomer = "customer"
	EntityProduct  = "product"
	EntityService  = "service"
	EntityOrder    = "order"
)

// ParseUUID parses a UUID identifier or returns a *domain.InvalidIDError
func ParseUUID(entity, id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, domain.NewInvalidIDError(entity, id)
	}
	return parsed, nil
}

// StatusChanged reports an order whose status moved away from the one a transition was checked against
func StatusChanged(expected, actual domain.OrderStatus) error {
	return domain.NewValidationError("orderStatus",
		fmt.Sprintf("status changed from %s to %s while the update was in progress", expected, actual))
}
