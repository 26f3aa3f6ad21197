package catalog

import (
	"errors"
	"strings"

	"github.com/alextreichler/humbleautos/internal/models"
)

var vehicleMessages = map[string]string{
	"name":                         "Name must be at least 3 characters",
	"make":                         "Make is required",
	"model":                        "Model is required",
	"year":                         "Year must be between 1900 and 2100",
	"price":                        "Price must be positive",
	"category":                     "Please select a valid category",
	"rating":                       "Rating must be between 0 and 5",
	"description":                  "Description must be at least 10 characters",
	"features":                     "At least one feature is required",
	"specifications.engine":        "Required",
	"specifications.transmission":  "Required",
	"specifications.drivetrain":    "Required",
	"specifications.fuelEconomy":   "Required",
	"specifications.acceleration":  "Required",
	"specifications.topSpeed":      "Required",
	"specifications.color":         "Required",
	"specifications.interiorColor": "Required",
	"specifications.horsepower":    "Horsepower must be positive",
	"specifications.torque":        "Torque must be positive",
	"specifications.seats":         "Seats must be positive",
}

// validateVehicle applies the car form rules to v, ignoring surrounding
// whitespace and blank features.
func validateVehicle(v *models.Vehicle) error {
	return models.Validate(models.VehicleInput{
		Name:           strings.TrimSpace(v.Name),
		Make:           strings.TrimSpace(v.Make),
		Model:          strings.TrimSpace(v.Model),
		Year:           v.Year,
		Price:          v.Price,
		Category:       v.Category,
		Rating:         v.Rating,
		Description:    strings.TrimSpace(v.Description),
		Features:       cleanFeatures(v.Features),
		Specifications: v.Specifications.Trimmed(),
	}, vehicleMessages)
}

// validatePatch checks only the fields the patch sets, so a listing that
// predates the form rules can still be edited.
func validatePatch(merged *models.Vehicle, patch models.VehiclePatch) error {
	err := validateVehicle(merged)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return verr.Only(patch.Fields()...)
}
