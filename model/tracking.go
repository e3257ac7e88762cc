package model

import "time"

type TrackingSample struct {
	Id               int64     `json:"id"`
	BusId            int64     `json:"busId"`
	BusNumber        string    `json:"busNumber"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	SpeedKmh         *float64  `json:"speedKmh"`
	DirectionDegrees *float64  `json:"directionDegrees"`
	Timestamp        time.Time `json:"timestamp"`
}
