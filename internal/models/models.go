package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryLuxury      Category = "luxury"
	CategorySports      Category = "sports"
	CategorySUV         Category = "suv"
	CategorySedan       Category = "sedan"
	CategoryElectric    Category = "electric"
	CategoryHybrid      Category = "hybrid"
	CategoryConvertible Category = "convertible"
	CategoryTruck       Category = "truck"

	// CategoryAll is only meaningful in filters.
	CategoryAll Category = "all"
)

// Categories lists every listing category in display order.
var Categories = []Category{
	CategoryLuxury,
	CategorySports,
	CategorySUV,
	CategorySedan,
	CategoryElectric,
	CategoryHybrid,
	CategoryConvertible,
	CategoryTruck,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Specifications struct {
	Engine        string `json:"engine" yaml:"engine" validate:"required"`
	Transmission  string `json:"transmission" yaml:"transmission" validate:"required"`
	Drivetrain    string `json:"drivetrain" yaml:"drivetrain" validate:"required"`
	Horsepower    int    `json:"horsepower" yaml:"horsepower" validate:"gt=0"`
	Torque        int    `json:"torque" yaml:"torque" validate:"gt=0"`
	FuelEconomy   string `json:"fuelEconomy" yaml:"fuelEconomy" validate:"required"`
	Acceleration  string `json:"acceleration" yaml:"acceleration" validate:"required"`
	TopSpeed      string `json:"topSpeed" yaml:"topSpeed" validate:"required"`
	Color         string `json:"color" yaml:"color" validate:"required"`
	InteriorColor string `json:"interiorColor" yaml:"interiorColor" validate:"required"`
	Seats         int    `json:"seats" yaml:"seats" validate:"gt=0"`
}

// Trimmed returns s with surrounding whitespace removed from every text field.
func (s Specifications) Trimmed() Specifications {
	for _, f := range []*string{
		&s.Engine, &s.Transmission, &s.Drivetrain, &s.FuelEconomy,
		&s.Acceleration, &s.TopSpeed, &s.Color, &s.InteriorColor,
	} {
		*f = strings.TrimSpace(*f)
	}
	return s
}

type Vehicle struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Make           string         `json:"make" yaml:"make"`
	Model          string         `json:"model" yaml:"model"`
	Year           int            `json:"year" yaml:"year"`
	Price          float64        `json:"price" yaml:"price"`
	Category       Category       `json:"category" yaml:"category"`
	Rating         float64        `json:"rating" yaml:"rating"` // 0-5
	Images         []string       `json:"images" yaml:"images"`
	Description    string         `json:"description" yaml:"description"`
	Features       []string       `json:"features" yaml:"features"`
	Specifications Specifications `json:"specifications" yaml:"specifications"`
	Comments       []Comment      `json:"comments" yaml:"comments"`
	Likes          int            `json:"likes" yaml:"likes"`
	IsFeatured     bool           `json:"isFeatured" yaml:"isFeatured"`
	CreatedAt      time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a copy that shares no slices with v.
func (v Vehicle) Clone() Vehicle {
	c := v
	c.Images = append([]string(nil), v.Images...)
	c.Features = append([]string(nil), v.Features...)
	c.Comments = append([]Comment(nil), v.Comments...)
	return c
}

type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	UserID    string    `json:"userId" yaml:"userId"`
	Username  string    `json:"username" yaml:"username"` // copied from the author at creation
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

type User struct {
	ID        string    `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email"`
	Username  string    `json:"username" yaml:"username"`
	IsAdmin   bool      `json:"isAdmin" yaml:"isAdmin"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// VehicleInput is what an admin submits to create a listing.
type VehicleInput struct {
	Name           string         `json:"name" validate:"min=3"`
	Make           string         `json:"make" validate:"required"`
	Model          string         `json:"model" validate:"required"`
	Year           int            `json:"year" validate:"gte=1900,lte=2100"`
	Price          float64        `json:"price" validate:"gt=0"`
	Category       Category       `json:"category" validate:"oneof=luxury sports suv sedan electric hybrid convertible truck"`
	Rating         float64        `json:"rating" validate:"gte=0,lte=5"`
	Description    string         `json:"description" validate:"min=10"`
	Features       []string       `json:"features" validate:"min=1,dive,required"`
	Images         []string       `json:"images"` // ignored, placeholders are used
	Specifications Specifications `json:"specifications"`
	IsFeatured     bool           `json:"isFeatured"`
}

// VehiclePatch is a partial update. Nil fields are left untouched.
type VehiclePatch struct {
	Name           *string         `json:"name,omitempty"`
	Make           *string         `json:"make,omitempty"`
	Model          *string         `json:"model,omitempty"`
	Year           *int            `json:"year,omitempty"`
	Price          *float64        `json:"price,omitempty"`
	Category       *Category       `json:"category,omitempty"`
	Rating         *float64        `json:"rating,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Features       []string        `json:"features,omitempty"`
	Images         []string        `json:"images,omitempty"`
	Specifications *Specifications `json:"specifications,omitempty"`
	IsFeatured     *bool           `json:"isFeatured,omitempty"`
}

// Fields lists the json names of the fields p sets.
func (p VehiclePatch) Fields() []string {
	var names []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{p.Name != nil, "name"},
		{p.Make != nil, "make"},
		{p.Model != nil, "model"},
		{p.Year != nil, "year"},
		{p.Price != nil, "price"},
		{p.Category != nil, "category"},
		{p.Rating != nil, "rating"},
		{p.Description != nil, "description"},
		{p.Features != nil, "features"},
		{p.Images != nil, "images"},
		{p.Specifications != nil, "specifications"},
		{p.IsFeatured != nil, "isFeatured"},
	} {
		if f.set {
			names = append(names, f.name)
		}
	}
	return names
}

// Apply merges the non-nil fields of p into v.
func (p VehiclePatch) Apply(v *Vehicle) {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Make != nil {
		v.Make = *p.Make
	}
	if p.Model != nil {
		v.Model = *p.Model
	}
	if p.Year != nil {
		v.Year = *p.Year
	}
	if p.Price != nil {
		v.Price = *p.Price
	}
	if p.Category != nil {
		v.Category = *p.Category
	}
	if p.Rating != nil {
		v.Rating = *p.Rating
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.Features != nil {
		v.Features = append([]string(nil), p.Features...)
	}
	if p.Images != nil {
		v.Images = append([]string(nil), p.Images...)
	}
	if p.Specifications != nil {
		v.Specifications = *p.Specifications
	}
	if p.IsFeatured != nil {
		v.IsFeatured = *p.IsFeatured
	}
}
