package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
)

// HourlyForecast is one hourly step of a site-specific forecast.
type HourlyForecast struct {
	Time              string   `json:"time"`
	Temperature       *float64 `json:"temperature,omitempty"`
	WindSpeed         *float64 `json:"windSpeed,omitempty"`
	WindGust          *float64 `json:"windGust,omitempty"`
	WindDirection     *float64 `json:"windDirection,omitempty"`
	PrecipProbability *float64 `json:"precipProbability,omitempty"`
	PrecipAmount      *float64 `json:"precipAmount,omitempty"`
	WeatherCode       *float64 `json:"weatherCode,omitempty"`
}

// DailyForecast is one day of a site-specific forecast.
type DailyForecast struct {
	Time              string   `json:"time"`
	MaxTemperature    *float64 `json:"maxTemperature,omitempty"`
	MinTemperature    *float64 `json:"minTemperature,omitempty"`
	WindSpeed         *float64 `json:"windSpeed,omitempty"`
	WindGust          *float64 `json:"windGust,omitempty"`
	PrecipProbability *float64 `json:"precipProbability,omitempty"`
	WeatherCode       *float64 `json:"weatherCode,omitempty"`
}

// Forecast merges the hourly and daily forecasts for one location.
type Forecast struct {
	Hourly []HourlyForecast `json:"hourly"`
	Daily  []DailyForecast  `json:"daily"`
}

var (
	dailyWeatherCodeKeys = []string{
		"significantWeatherCode", "daySignificantWeatherCode",
		"significantWeatherCodeDay", "significantWeatherCodeMostLikely",
		"weatherCode", "wxCode",
	}
	anyWeatherCodeKey = regexp.MustCompile(`(?i)significant.*code`)
)

type geoJSONForecast struct {
	Features []struct {
		Properties struct {
			TimeSeries []map[string]any `json:"timeSeries"`
		} `json:"properties"`
	} `json:"features"`
}

// ParseForecast normalizes the hourly and daily site-specific forecast
// payloads into a single Forecast.
func ParseForecast(hourly, daily []byte) (Forecast, error) {
	hourlySeries, err := timeSeries(hourly)
	if err != nil {
		return Forecast{}, fmt.Errorf("decode hourly forecast: %w", err)
	}
	dailySeries, err := timeSeries(daily)
	if err != nil {
		return Forecast{}, fmt.Errorf("decode daily forecast: %w", err)
	}

	out := Forecast{
		Hourly: make([]HourlyForecast, 0, len(hourlySeries)),
		Daily:  make([]DailyForecast, 0, len(dailySeries)),
	}
	for _, h := range hourlySeries {
		out.Hourly = append(out.Hourly, HourlyForecast{
			Time:              FirstString(h, "time"),
			Temperature:       optFloat(h, "screenTemperature"),
			WindSpeed:         optFloat(h, "windSpeed10m"),
			WindGust:          optFloat(h, "windGustSpeed10m", "max10mWindGust"),
			WindDirection:     optFloat(h, "windDirectionFrom10m"),
			PrecipProbability: optFloat(h, "probOfPrecipitation"),
			PrecipAmount:      optFloat(h, "totalPrecipAmount"),
			WeatherCode:       optFloat(h, "significantWeatherCode"),
		})
	}
	for _, d := range dailySeries {
		out.Daily = append(out.Daily, DailyForecast{
			Time:              FirstString(d, "time"),
			MaxTemperature:    optFloat(d, "dayMaxScreenTemperature", "dayUpperBoundMaxTemp"),
			MinTemperature:    optFloat(d, "nightMinScreenTemperature", "nightLowerBoundMinTemp"),
			WindSpeed:         optFloat(d, "midday10MWindSpeed", "midnight10MWindSpeed"),
			WindGust:          optFloat(d, "midday10MWindGust", "midnight10MWindGust"),
			PrecipProbability: optFloat(d, "dayProbabilityOfPrecipitation", "dayProbabilityOfRain"),
			WeatherCode:       dailyWeatherCode(d),
		})
	}
	return out, nil
}

func timeSeries(body []byte) ([]map[string]any, error) {
	var doc geoJSONForecast
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if len(doc.Features) == 0 {
		return nil, nil
	}
	return doc.Features[0].Properties.TimeSeries, nil
}

// dailyWeatherCode prefers the known daytime code fields, then any field
// that looks like a significant weather code, then the night code.
func dailyWeatherCode(d map[string]any) *float64 {
	if v := optFloat(d, dailyWeatherCodeKeys...); v != nil {
		return v
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		if anyWeatherCodeKey.MatchString(k) && k != "nightSignificantWeatherCode" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if v := optFloat(d, keys...); v != nil {
		return v
	}
	return optFloat(d, "nightSignificantWeatherCode")
}

func optFloat(m map[string]any, keys ...string) *float64 {
	f, ok := FirstFloat(m, keys...)
	if !ok {
		return nil
	}
	return &f
}
