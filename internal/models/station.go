package models

// Station is a named place picked on the trip form: a fuel station or a
// freight company.
type Station struct {
	ID       string `json:"id" bson:"id"`
	Name     string `json:"name" bson:"name" validate:"required"`
	Location string `json:"location,omitempty" bson:"location,omitempty"`
}
