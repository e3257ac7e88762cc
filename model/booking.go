package model

import "time"

const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
)

var Genders = []string{"MALE", "FEMALE", "OTHER"}

type PassengerDetail struct {
	SeatNumber      int    `json:"seatNumber"`
	PassengerName   string `json:"passengerName"`
	PassengerAge    int    `json:"passengerAge"`
	PassengerGender string `json:"passengerGender"`
}

type BookingRequest struct {
	ScheduleId int64             `json:"scheduleId"`
	TravelDate string            `json:"travelDate"`
	Passengers []PassengerDetail `json:"passengers"`
}

type Booking struct {
	Id               int64             `json:"id"`
	BookingReference string            `json:"bookingReference"`
	BookingDate      string            `json:"bookingDate"`
	TotalSeats       int               `json:"totalSeats"`
	TotalAmount      float64           `json:"totalAmount"`
	Status           string            `json:"status"`
	CreatedAt        time.Time         `json:"createdAt"`
	BusNumber        string            `json:"busNumber"`
	OperatorName     string            `json:"operatorName"`
	Origin           string            `json:"origin"`
	Destination      string            `json:"destination"`
	DepartureTime    string            `json:"departureTime"`
	ArrivalTime      string            `json:"arrivalTime"`
	TrackingLink     string            `json:"trackingLink"`
	Passengers       []PassengerDetail `json:"passengers"`
}
