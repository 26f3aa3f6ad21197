package catalog

import (
	"cmp"
	"slices"

	"github.com/alextreichler/humbleautos/internal/models"
)

// DashboardStats are the admin dashboard totals.
type DashboardStats struct {
	TotalVehicles      int                     `json:"totalVehicles"`
	TotalLikes         int                     `json:"totalLikes"`
	TotalComments      int                     `json:"totalComments"`
	FeaturedVehicles   int                     `json:"featuredVehicles"`
	VehiclesByCategory map[models.Category]int `json:"vehiclesByCategory"`
	MostLiked          []VehicleLikes          `json:"mostLiked"`
}

type VehicleLikes struct {
	VehicleID string `json:"vehicleId"`
	Name      string `json:"name"`
	Likes     int    `json:"likes"`
}

const mostLikedLimit = 5

func (s *Store) Stats() DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := DashboardStats{
		TotalVehicles:      len(s.vehicles),
		FeaturedVehicles:   len(s.featured),
		VehiclesByCategory: make(map[models.Category]int),
	}
	for _, v := range s.vehicles {
		stats.TotalLikes += v.Likes
		stats.TotalComments += len(v.Comments)
		stats.VehiclesByCategory[v.Category]++
		stats.MostLiked = append(stats.MostLiked, VehicleLikes{VehicleID: v.ID, Name: v.Name, Likes: v.Likes})
	}

	// Ties keep insertion order.
	slices.SortStableFunc(stats.MostLiked, func(a, b VehicleLikes) int {
		return cmp.Compare(b.Likes, a.Likes)
	})
	if len(stats.MostLiked) > mostLikedLimit {
		stats.MostLiked = stats.MostLiked[:mostLikedLimit]
	}
	return stats
}
