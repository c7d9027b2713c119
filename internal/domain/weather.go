package domain

import "time"

// LocatedRecord is a point plus named numeric attributes, the input of zone clustering
type LocatedRecord struct {
	ID         string             `json:"id"`
	Location   Point              `json:"location"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
}

// WeatherObservation is a reading from a weather / air-quality station
type WeatherObservation struct {
	StationID   string    `json:"station_id"`
	Location    Point     `json:"location"`
	Temperature float64   `json:"temperature"`
	Humidity    int       `json:"humidity"`
	AQI         int       `json:"aqi"`
	ObservedAt  time.Time `json:"observed_at"`
}

// LocatedRecord flattens the observation into a clusterable record
func (w WeatherObservation) LocatedRecord() LocatedRecord {
	return LocatedRecord{
		ID:       w.StationID,
		Location: w.Location,
		Attributes: map[string]float64{
			"temperature": w.Temperature,
			"humidity":    float64(w.Humidity),
			"aqi":         float64(w.AQI),
		},
	}
}

// AlmatyCenter coordinates
const (
	AlmatyCenterLat = 43.2389
	AlmatyCenterLng = 76.8897
)
