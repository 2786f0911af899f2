package types

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// SuccessCode is the provider's "cod" value for a successful lookup. The
// current-weather endpoint sends it as a number and the forecast endpoint as a
// string; StatusCode normalizes both to this string.
const SuccessCode = "200"

// StatusCode is the provider-embedded "cod" field. It decodes from either a
// JSON number or a JSON string and always compares as a string.
type StatusCode string

// UnmarshalJSON accepts 200, "200" and null.
func (c *StatusCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = StatusCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = StatusCode(n.String())
	return nil
}

// MarshalJSON emits the code as a number when it is numeric.
func (c StatusCode) MarshalJSON() ([]byte, error) {
	if _, err := strconv.Atoi(string(c)); err == nil {
		return []byte(c), nil
	}
	return json.Marshal(string(c))
}

// OK reports whether the code signals success.
func (c StatusCode) OK() bool {
	return string(c) == SuccessCode
}

// ProviderMessage is the provider's "message" field. Error payloads carry a
// human readable string; forecast payloads send the number 0, which decodes to
// an empty message.
type ProviderMessage string

// UnmarshalJSON keeps string values and discards anything else.
func (m *ProviderMessage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*m = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*m = ProviderMessage(s)
	return nil
}

// Condition is one entry of the provider's "weather" list.
type Condition struct {
	ID          int    `json:"id,omitempty"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// MainReadings holds temperature (°C with units=metric) and relative humidity (%).
type MainReadings struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

// Wind holds wind speed in m/s.
type Wind struct {
	Speed float64 `json:"speed"`
}

// Snapshot is the current-weather payload as returned by the provider.
type Snapshot struct {
	Cod     StatusCode      `json:"cod"`
	Message ProviderMessage `json:"message,omitempty"`
	Name    string          `json:"name"`
	Dt      int64           `json:"dt"`
	Main    MainReadings    `json:"main"`
	Wind    Wind            `json:"wind"`
	Weather []Condition     `json:"weather"`
}

// ForecastEntry is one timestamped point of a forecast sequence.
type ForecastEntry struct {
	Dt      int64        `json:"dt"`
	DtTxt   string       `json:"dt_txt,omitempty"`
	Main    MainReadings `json:"main"`
	Wind    Wind         `json:"wind"`
	Weather []Condition  `json:"weather"`
}

// PrimaryCondition returns the first condition label, or "" when the entry has none.
func (e ForecastEntry) PrimaryCondition() string {
	if len(e.Weather) == 0 {
		return ""
	}
	return e.Weather[0].Main
}

// ForecastCity describes the place a forecast belongs to.
type ForecastCity struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// Forecast is the forecast payload. List keeps the provider's chronological
// order; nothing in this service reorders it.
type Forecast struct {
	Cod     StatusCode      `json:"cod"`
	Message ProviderMessage `json:"message,omitempty"`
	City    ForecastCity    `json:"city"`
	List    []ForecastEntry `json:"list"`
}
