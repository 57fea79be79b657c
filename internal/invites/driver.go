package invites

import (
	"github.com/fleetdesk/fleetdesk-backend/pkg/db/models"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
)

// DriverService is the driver variant of the lifecycle. Structurally the
// same state machine; no fee attribute.
type DriverService struct {
	*Service[models.DriverAssociation, *models.DriverAssociation]
}

func NewDriverService(deps Deps[models.DriverAssociation, *models.DriverAssociation]) (*DriverService, error) {
	base, err := newService(deps, enums.InviteeKindDriver, enums.AggregateDriverAssociation, buildDriverRow, driverFee)
	if err != nil {
		return nil, err
	}
	return &DriverService{Service: base}, nil
}

func buildDriverRow(assoc models.Association, _ GenerateCodeInput) *models.DriverAssociation {
	return &models.DriverAssociation{Association: assoc}
}
