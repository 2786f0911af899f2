package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode_UnmarshalNumberAndString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   StatusCode
		wantOK bool
	}{
		{"number success", `{"cod":200}`, "200", true},
		{"string success", `{"cod":"200"}`, "200", true},
		{"number not found", `{"cod":404}`, "404", false},
		{"string unauthorized", `{"cod":"401"}`, "401", false},
		{"null", `{"cod":null}`, "", false},
		{"missing", `{}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload struct {
				Cod StatusCode `json:"cod"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.input), &payload))
			assert.Equal(t, tt.want, payload.Cod)
			assert.Equal(t, tt.wantOK, payload.Cod.OK())
		})
	}
}

func TestStatusCode_MarshalKeepsNumericForm(t *testing.T) {
	data, err := json.Marshal(StatusCode("200"))
	require.NoError(t, err)
	assert.Equal(t, `200`, string(data))

	data, err = json.Marshal(StatusCode("n/a"))
	require.NoError(t, err)
	assert.Equal(t, `"n/a"`, string(data))
}

func TestProviderMessage_IgnoresNumbers(t *testing.T) {
	var payload struct {
		Message ProviderMessage `json:"message"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"message":0}`), &payload))
	assert.Empty(t, payload.Message)

	require.NoError(t, json.Unmarshal([]byte(`{"message":"city not found"}`), &payload))
	assert.Equal(t, ProviderMessage("city not found"), payload.Message)
}

func TestSnapshot_DecodesProviderPayload(t *testing.T) {
	body := `{"cod":200,"name":"Ecatepec de Morelos","dt":1710113400,
		"main":{"temp":18,"humidity":40},"wind":{"speed":3},
		"weather":[{"id":800,"description":"clear sky","icon":"01d","main":"Clear"}]}`

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))

	assert.True(t, snap.Cod.OK())
	assert.Equal(t, "Ecatepec de Morelos", snap.Name)
	assert.Equal(t, 18.0, snap.Main.Temp)
	assert.Equal(t, 40.0, snap.Main.Humidity)
	assert.Equal(t, 3.0, snap.Wind.Speed)
	require.Len(t, snap.Weather, 1)
	assert.Equal(t, Condition{ID: 800, Main: "Clear", Description: "clear sky", Icon: "01d"}, snap.Weather[0])
}

func TestForecastEntry_PrimaryCondition(t *testing.T) {
	assert.Equal(t, "", ForecastEntry{}.PrimaryCondition())
	entry := ForecastEntry{Weather: []Condition{{Main: "Rain"}, {Main: "Clouds"}}}
	assert.Equal(t, "Rain", entry.PrimaryCondition())
}
