// Package dataset loads, cleans and filters air-quality measurements.
package dataset

import (
	"slices"
	"time"
)

// Column names a numeric measurement column of the input CSV.
type Column string

const (
	ColAQI         Column = "aqi"
	ColPM25        Column = "pm25"
	ColPM10        Column = "pm10"
	ColNO2         Column = "no2"
	ColO3          Column = "o3"
	ColSO2         Column = "so2"
	ColCO          Column = "co"
	ColTemperature Column = "temperature"
	ColHumidity    Column = "humidity"
	ColWindSpeed   Column = "wind_speed"
)

const (
	colTimestamp = "timestamp"
	colCity      = "city"
	colIcon      = "icon"
)

// NumericColumns lists every numeric column in CSV order.
var NumericColumns = []Column{
	ColAQI, ColPM25, ColPM10, ColNO2, ColO3, ColSO2, ColCO,
	ColTemperature, ColHumidity, ColWindSpeed,
}

// Pollutants are the individually measured concentrations.
var Pollutants = []Column{ColPM25, ColPM10, ColNO2, ColO3, ColSO2, ColCO}

// WeatherFactors are the columns correlated against AQI.
var WeatherFactors = []Column{ColTemperature, ColHumidity, ColWindSpeed}

// ImputedColumns are filled with their per-city mean when missing.
var ImputedColumns = []Column{ColSO2, ColCO, ColPM10, ColO3, ColNO2, ColPM25}

// IsPollutant reports whether c is one of Pollutants.
func IsPollutant(c Column) bool { return slices.Contains(Pollutants, c) }

// IsWeatherFactor reports whether c is one of WeatherFactors.
func IsWeatherFactor(c Column) bool { return slices.Contains(WeatherFactors, c) }

// Record is one cleaned measurement row. A nil value means missing.
type Record struct {
	Timestamp   time.Time `json:"timestamp"`
	City        string    `json:"city"`
	AQI         *float64  `json:"aqi"`
	PM25        *float64  `json:"pm25"`
	PM10        *float64  `json:"pm10"`
	NO2         *float64  `json:"no2"`
	O3          *float64  `json:"o3"`
	SO2         *float64  `json:"so2"`
	CO          *float64  `json:"co"`
	Temperature *float64  `json:"temperature"`
	Humidity    *float64  `json:"humidity"`
	WindSpeed   *float64  `json:"wind_speed"`

	// Icon is presentation-only and never exported.
	Icon string `json:"-"`
}

// Value returns the value of column c, or nil when missing or unknown.
func (r *Record) Value(c Column) *float64 {
	switch c {
	case ColAQI:
		return r.AQI
	case ColPM25:
		return r.PM25
	case ColPM10:
		return r.PM10
	case ColNO2:
		return r.NO2
	case ColO3:
		return r.O3
	case ColSO2:
		return r.SO2
	case ColCO:
		return r.CO
	case ColTemperature:
		return r.Temperature
	case ColHumidity:
		return r.Humidity
	case ColWindSpeed:
		return r.WindSpeed
	}
	return nil
}

// SetValue replaces the value of column c. Unknown columns are ignored.
func (r *Record) SetValue(c Column, v *float64) {
	switch c {
	case ColAQI:
		r.AQI = v
	case ColPM25:
		r.PM25 = v
	case ColPM10:
		r.PM10 = v
	case ColNO2:
		r.NO2 = v
	case ColO3:
		r.O3 = v
	case ColSO2:
		r.SO2 = v
	case ColCO:
		r.CO = v
	case ColTemperature:
		r.Temperature = v
	case ColHumidity:
		r.Humidity = v
	case ColWindSpeed:
		r.WindSpeed = v
	}
}

// Dataset is an ordered sequence of cleaned records.
type Dataset struct {
	Records []Record
}

// Len returns the number of records.
func (d Dataset) Len() int { return len(d.Records) }

// Cities returns the distinct city names in order of first appearance.
func (d Dataset) Cities() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Records {
		if seen[r.City] {
			continue
		}
		seen[r.City] = true
		out = append(out, r.City)
	}
	return out
}

// DateBounds returns the calendar dates of the earliest and latest timestamps.
// ok is false for an empty dataset.
func (d Dataset) DateBounds() (minDate, maxDate Date, ok bool) {
	if len(d.Records) == 0 {
		return Date{}, Date{}, false
	}
	lo, hi := d.Records[0].Timestamp, d.Records[0].Timestamp
	for _, r := range d.Records[1:] {
		if r.Timestamp.Before(lo) {
			lo = r.Timestamp
		}
		if r.Timestamp.After(hi) {
			hi = r.Timestamp
		}
	}
	return DateOf(lo), DateOf(hi), true
}

func ptr(v float64) *float64 { return &v }
