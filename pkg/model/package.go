package model

// Package is a fixed-price trip bundle from the catalog.
type Package struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       Price    `json:"price"`
	Duration    string   `json:"duration"`
	MaxDistance string   `json:"max_distance"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

const CustomTripName = "Custom Trip"
