package account

import (
	"taskalive/internals/modules/plan"

	"github.com/google/uuid"
)

// Account is a read model. Registration, billing and password flows live
// in the user service; this service only needs the alert address and the
// plan tier.
type Account struct {
	ID        uuid.UUID
	Email     string
	Plan      plan.Tier
	SMSNumber string
}
