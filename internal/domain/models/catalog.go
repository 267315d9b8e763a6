package models

import "time"

// City is a top-level catalog entity; names are unique case-insensitively.
type City struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Branch is an operator office located in a city.
type Branch struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CityID   int64  `json:"cityId"`
	CityName string `json:"cityName,omitempty"`
}

// Bus belongs to a branch; plate numbers are unique case-insensitively.
type Bus struct {
	ID          int64  `json:"id"`
	PlateNumber string `json:"plateNumber"`
	Capacity    int    `json:"capacity"`
	BranchID    int64  `json:"branchId"`
}

// Route connects two distinct branches.
type Route struct {
	ID            int64         `json:"id"`
	OriginID      int64         `json:"originId"`
	DestinationID int64         `json:"destinationId"`
	Duration      time.Duration `json:"-"`
	DurationText  string        `json:"duration"`
	DistanceKM    float64       `json:"distanceKm"`
}
