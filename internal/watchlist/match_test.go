package watchlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The Matrix", "matrix"},
		{"Amélie", "amelie"},
		{"Schindler's List", "schindlers list"},
		{"Star Wars: Episode IV - A New Hope", "star wars episode iv a new hope"},
		{"Fast & Furious", "fast and furious"},
		{"  A   Quiet Place ", "quiet place"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanTitle(tt.in))
		})
	}
}

func TestMatchesTitle(t *testing.T) {
	tests := []struct {
		query, title string
		want         bool
	}{
		{"matrix", "The Matrix", true},
		{"shawshank redemtion", "The Shawshank Redemption", true},
		{"godfater", "The Godfather Part II", true},
		{"schindler", "Schindler's List", true},
		{"", "Anything", true},
		{"alien", "12 Angry Men", false},
		{"casablanca", "The Godfather", false},
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesTitle(tt.query, tt.title))
		})
	}
}
