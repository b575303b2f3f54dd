package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hourlyFixture = `{"features":[{"properties":{"timeSeries":[
	{"time":"2026-10-19T10:00Z","screenTemperature":11.2,"windSpeed10m":3.1,"windGustSpeed10m":6.4,
	 "windDirectionFrom10m":220,"probOfPrecipitation":12,"totalPrecipAmount":0,"significantWeatherCode":7},
	{"time":"2026-10-19T11:00Z","screenTemperature":12.0,"max10mWindGust":7.0}
]}}]}`

const dailyFixture = `{"features":[{"properties":{"timeSeries":[
	{"time":"2026-10-19T00:00Z","dayMaxScreenTemperature":14.5,"nightMinScreenTemperature":6.1,
	 "midday10MWindSpeed":4.2,"midday10MWindGust":9.3,"dayProbabilityOfPrecipitation":40,"daySignificantWeatherCode":12},
	{"time":"2026-10-20T00:00Z","dayUpperBoundMaxTemp":15,"nightLowerBoundMinTemp":5,
	 "midnight10MWindSpeed":2.0,"dayProbabilityOfRain":10,"nightSignificantWeatherCode":2,"zzSignificantWeatherCodeGuess":3},
	{"time":"2026-10-21T00:00Z","nightSignificantWeatherCode":2}
]}}]}`

func TestParseForecast(t *testing.T) {
	f, err := ParseForecast([]byte(hourlyFixture), []byte(dailyFixture))
	require.NoError(t, err)

	require.Len(t, f.Hourly, 2)
	h := f.Hourly[0]
	assert.Equal(t, "2026-10-19T10:00Z", h.Time)
	require.NotNil(t, h.Temperature)
	assert.InDelta(t, 11.2, *h.Temperature, 1e-9)
	require.NotNil(t, h.WeatherCode)
	assert.InDelta(t, 7.0, *h.WeatherCode, 1e-9)
	require.NotNil(t, f.Hourly[1].WindGust)
	assert.InDelta(t, 7.0, *f.Hourly[1].WindGust, 1e-9)
	assert.Nil(t, f.Hourly[1].WeatherCode)

	require.Len(t, f.Daily, 3)
	require.NotNil(t, f.Daily[0].WeatherCode)
	assert.InDelta(t, 12.0, *f.Daily[0].WeatherCode, 1e-9)
	require.NotNil(t, f.Daily[1].MaxTemperature)
	assert.InDelta(t, 15.0, *f.Daily[1].MaxTemperature, 1e-9)
	require.NotNil(t, f.Daily[1].WeatherCode)
	assert.InDelta(t, 3.0, *f.Daily[1].WeatherCode, 1e-9, "pattern match beats the night code")
	require.NotNil(t, f.Daily[2].WeatherCode)
	assert.InDelta(t, 2.0, *f.Daily[2].WeatherCode, 1e-9)
}

func TestParseForecast_NoFeatures(t *testing.T) {
	f, err := ParseForecast([]byte(`{"features":[]}`), []byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, f.Hourly)
	assert.Empty(t, f.Daily)
}

func TestParseForecast_InvalidPayload(t *testing.T) {
	_, err := ParseForecast([]byte(`{}`), []byte(`[`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily")
}
