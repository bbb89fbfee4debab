package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Truck describes the vehicle a profile drives.
type Truck struct {
	Plate            string `bson:"plate" json:"plate"`
	RegistrationDate string `bson:"registration_date,omitempty" json:"registration_date,omitempty"`
	InitialOdometer  int    `bson:"initial_km" json:"initial_km"`
	CurrentOdometer  int    `bson:"current_km" json:"current_km"`
	Photo            string `bson:"photo,omitempty" json:"photo,omitempty"`
}

// Odometer returns the best known reading: current if set, otherwise initial.
func (t Truck) Odometer() int {
	if t.CurrentOdometer > 0 {
		return t.CurrentOdometer
	}
	return t.InitialOdometer
}

// Profile represents the driver account and its truck
type Profile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	CompanyName  string             `bson:"company_name" json:"company_name"`
	DriverName   string             `bson:"driver_name" json:"driver_name"`
	DriverPhoto  string             `bson:"driver_photo,omitempty" json:"driver_photo,omitempty"`
	Truck        Truck              `bson:"truck" json:"truck"`
	LastLogin    *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a profile registration request
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Password        string `json:"password" validate:"required,min=8"`
	CompanyName     string `json:"company_name"`
	DriverName      string `json:"driver_name" validate:"required"`
	Plate           string `json:"plate" validate:"required"`
	InitialOdometer int    `json:"initial_km" validate:"gte=0"`
}

// ProfileUpdateRequest carries editable profile fields. Zero values are ignored.
type ProfileUpdateRequest struct {
	CompanyName      string `json:"company_name"`
	DriverName       string `json:"driver_name"`
	DriverPhoto      string `json:"driver_photo"`
	Plate            string `json:"plate"`
	RegistrationDate string `json:"registration_date" validate:"omitempty,datetime=2006-01-02"`
	InitialOdometer  int    `json:"initial_km" validate:"gte=0"`
	CurrentOdometer  int    `json:"current_km" validate:"gte=0"`
	TruckPhoto       string `json:"truck_photo"`
}

// Apply copies the non-zero fields of the request onto p.
func (r ProfileUpdateRequest) Apply(p *Profile) {
	if r.CompanyName != "" {
		p.CompanyName = r.CompanyName
	}
	if r.DriverName != "" {
		p.DriverName = r.DriverName
	}
	if r.DriverPhoto != "" {
		p.DriverPhoto = r.DriverPhoto
	}
	if r.Plate != "" {
		p.Truck.Plate = r.Plate
	}
	if r.RegistrationDate != "" {
		p.Truck.RegistrationDate = r.RegistrationDate
	}
	if r.InitialOdometer > 0 {
		p.Truck.InitialOdometer = r.InitialOdometer
	}
	if r.CurrentOdometer > 0 {
		p.Truck.CurrentOdometer = r.CurrentOdometer
	}
	if r.TruckPhoto != "" {
		p.Truck.Photo = r.TruckPhoto
	}
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Token        string  `json:"token"`
	RefreshToken string  `json:"refresh_token"`
	Profile      Profile `json:"profile"`
}

// Claims represents JWT claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Plate    string `json:"plate"`
	Exp      int64  `json:"exp"`
}
