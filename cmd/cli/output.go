package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alextreichler/humbleautos/internal/catalog"
	"github.com/alextreichler/humbleautos/internal/models"
)

func printUser(w io.Writer, prefix string, u models.User) {
	role := ""
	if u.IsAdmin {
		role = " (admin)"
	}
	fmt.Fprintf(w, "%s %s <%s>%s\n", prefix, u.Username, u.Email, role)
}

// newTable lays rows out in padded columns without borders. Styles come from
// a renderer bound to w, so plain writers get plain text.
func newTable(w io.Writer, headers ...string) *table.Table {
	r := lipgloss.NewRenderer(w)
	cell := r.NewStyle().PaddingRight(2)
	header := cell.Bold(true)
	return table.New().
		Headers(headers...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func printVehicles(w io.Writer, vs []models.Vehicle) {
	if len(vs) == 0 {
		fmt.Fprintln(w, "No vehicles found")
		return
	}
	t := newTable(w, "ID", "NAME", "YEAR", "CATEGORY", "PRICE", "RATING", "LIKES")
	for _, v := range vs {
		t.Row(v.ID, v.Name, fmt.Sprint(v.Year), string(v.Category),
			formatPrice(v.Price), fmt.Sprintf("%.1f", v.Rating), fmt.Sprint(v.Likes))
	}
	fmt.Fprintln(w, t.Render())
}

func printVehicle(w io.Writer, v models.Vehicle, favorite bool) {
	star := ""
	if favorite {
		star = " *"
	}
	fmt.Fprintf(w, "%s%s\n%d %s %s, %s, rated %.1f, %d likes\n\n%s\n\n",
		v.Name, star, v.Year, v.Make, v.Model, formatPrice(v.Price), v.Rating, v.Likes, v.Description)

	s := v.Specifications
	t := newTable(w).
		Row("Engine", s.Engine).
		Row("Transmission", s.Transmission).
		Row("Drivetrain", s.Drivetrain).
		Row("Horsepower", fmt.Sprintf("%d hp", s.Horsepower)).
		Row("Torque", fmt.Sprintf("%d lb-ft", s.Torque)).
		Row("Fuel economy", s.FuelEconomy).
		Row("Acceleration", s.Acceleration).
		Row("Top speed", s.TopSpeed).
		Row("Color", s.Color+" / "+s.InteriorColor).
		Row("Seats", fmt.Sprint(s.Seats))
	fmt.Fprintln(w, t.Render())

	if len(v.Features) > 0 {
		fmt.Fprintf(w, "\nFeatures: %s\n", strings.Join(v.Features, ", "))
	}
	fmt.Fprintf(w, "\nComments (%d)\n", len(v.Comments))
	for _, c := range v.Comments {
		fmt.Fprintf(w, "  %s, %s: %s\n", c.Username, c.CreatedAt.Format("2006-01-02"), c.Content)
	}
}

func printStats(w io.Writer, s catalog.DashboardStats, users int) {
	t := newTable(w).
		Row("Vehicles", fmt.Sprint(s.TotalVehicles)).
		Row("Featured", fmt.Sprint(s.FeaturedVehicles)).
		Row("Likes", fmt.Sprint(s.TotalLikes)).
		Row("Comments", fmt.Sprint(s.TotalComments)).
		Row("Users", fmt.Sprint(users))
	for _, c := range models.Categories {
		if n := s.VehiclesByCategory[c]; n > 0 {
			t.Row("  "+string(c), fmt.Sprint(n))
		}
	}
	fmt.Fprintln(w, t.Render())

	if len(s.MostLiked) > 0 {
		fmt.Fprintln(w, "\nMost liked")
		for i, v := range s.MostLiked {
			fmt.Fprintf(w, "  %d. %s (%d)\n", i+1, v.Name, v.Likes)
		}
	}
}

// formatPrice renders whole dollars with thousands separators.
func formatPrice(p float64) string {
	digits := fmt.Sprintf("%.0f", p)
	var b strings.Builder
	b.WriteByte('$')
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
