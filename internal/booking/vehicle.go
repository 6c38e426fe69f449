package booking

// VehicleDetails is the structured document attached to service and
// roadside bookings. A closed schema rather than an open map; the HTTP
// boundary validates it before it is stored as JSONB.
type VehicleDetails struct {
	VehicleType        string `json:"vehicleType" validate:"required,oneof=car bike scooter truck"`
	Brand              string `json:"brand,omitempty"`
	Model              string `json:"model,omitempty"`
	Year               int    `json:"year,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
}
