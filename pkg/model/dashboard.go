package model

// Dashboard is the occupancy summary shown on the landing page.
type Dashboard struct {
	TotalRooms     int   `json:"totalRooms"`
	AvailableRooms int   `json:"availableRooms"`
	OccupiedRooms  int   `json:"occupiedRooms"`
	TotalBookings  int64 `json:"totalBookings"`
}
