// Package seed holds the demo catalog and accounts every client starts from.
package seed

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alextreichler/humbleautos/internal/models"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Account is a demo login. Exactly one of Password and PasswordHash is set.
type Account struct {
	User         models.User `yaml:"user"`
	Password     string      `yaml:"password"`
	PasswordHash string      `yaml:"passwordHash"`
}

type CategoryOption struct {
	Value models.Category `yaml:"value" json:"value"`
	Label string          `yaml:"label" json:"label"`
}

type Range struct {
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
	Label string  `yaml:"label" json:"label"`
}

// FilterPresets are the choices offered next to the listing filters.
type FilterPresets struct {
	Categories  []CategoryOption `yaml:"categories" json:"categories"`
	PriceRanges []Range          `yaml:"priceRanges" json:"priceRanges"`
	YearRanges  []Range          `yaml:"yearRanges" json:"yearRanges"`
}

// Vehicles returns the built-in demo catalog.
func Vehicles() ([]models.Vehicle, error) {
	data, err := dataFS.ReadFile("data/vehicles.yaml")
	if err != nil {
		return nil, err
	}
	return parseVehicles(data)
}

// LoadVehicles reads a catalog in the same format from path.
func LoadVehicles(path string) ([]models.Vehicle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parseVehicles(data)
}

func Accounts() ([]Account, error) {
	data, err := dataFS.ReadFile("data/users.yaml")
	if err != nil {
		return nil, err
	}
	var doc struct {
		Accounts []Account `yaml:"accounts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse accounts: %w", err)
	}
	seen := make(map[string]bool)
	for _, a := range doc.Accounts {
		if a.User.ID == "" || a.User.Email == "" {
			return nil, fmt.Errorf("account without id or email")
		}
		if seen[a.User.Email] {
			return nil, fmt.Errorf("duplicate account email %q", a.User.Email)
		}
		if (a.Password == "") == (a.PasswordHash == "") {
			return nil, fmt.Errorf("account %q needs exactly one of password and passwordHash", a.User.Email)
		}
		seen[a.User.Email] = true
	}
	return doc.Accounts, nil
}

func Filters() (FilterPresets, error) {
	var presets FilterPresets
	data, err := dataFS.ReadFile("data/filters.yaml")
	if err != nil {
		return presets, err
	}
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return presets, fmt.Errorf("parse filter presets: %w", err)
	}
	return presets, nil
}

func parseVehicles(data []byte) ([]models.Vehicle, error) {
	var doc struct {
		Vehicles []models.Vehicle `yaml:"vehicles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse vehicles: %w", err)
	}

	seen := make(map[string]bool, len(doc.Vehicles))
	for i, v := range doc.Vehicles {
		switch {
		case v.ID == "":
			return nil, fmt.Errorf("vehicle #%d has no id", i+1)
		case seen[v.ID]:
			return nil, fmt.Errorf("duplicate vehicle id %q", v.ID)
		case v.Price <= 0:
			return nil, fmt.Errorf("vehicle %q: price must be positive", v.ID)
		case v.Rating < 0 || v.Rating > 5:
			return nil, fmt.Errorf("vehicle %q: rating out of range", v.ID)
		case !v.Category.Valid():
			return nil, fmt.Errorf("vehicle %q: unknown category %q", v.ID, v.Category)
		}
		seen[v.ID] = true
	}
	return doc.Vehicles, nil
}
