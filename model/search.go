package model

// Bus types accepted by the search endpoint. An empty type means any.
var BusTypes = []string{"", "AC", "NON_AC", "SLEEPER", "SEMI_SLEEPER", "LUXURY"}

type SearchRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	TravelDate  string `json:"travelDate"`
	BusType     string `json:"busType,omitempty"`
	SortBy      string `json:"sortBy,omitempty"`
	SortOrder   string `json:"sortOrder,omitempty"`
}

type BusOffer struct {
	ScheduleId     int64    `json:"scheduleId"`
	BusId          int64    `json:"busId"`
	BusNumber      string   `json:"busNumber"`
	BusType        string   `json:"busType"`
	OperatorName   string   `json:"operatorName"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	DepartureTime  string   `json:"departureTime"`
	ArrivalTime    string   `json:"arrivalTime"`
	Price          float64  `json:"price"`
	TotalSeats     int      `json:"totalSeats"`
	AvailableSeats int      `json:"availableSeats"`
	Amenities      []string `json:"amenities"`
	Duration       string   `json:"duration"`
}
