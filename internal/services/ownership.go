package services

import (
	"adoteja/internal/models"

	"github.com/google/uuid"
)

// authorizeOwner gates every listing mutation: only the creator may edit,
// delete or reactivate a listing. On denial the mutation must not happen and
// the listing is left untouched.
func authorizeOwner(listing *models.Listing, actorID uuid.UUID) error {
	if listing.OwnerID != actorID {
		return ErrPermissionDenied
	}
	return nil
}
