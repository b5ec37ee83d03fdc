package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/cacheflow/pkg/domain"
)

func TestPortKeyString(t *testing.T) {
	assert.Equal(t, "step1.output.data", domain.OutputKey("step1", "data").String())
	assert.Equal(t, "step2.input.value", domain.InputKey("step2", "value").String())
}

func TestConnectionViewCurve(t *testing.T) {
	v := domain.ConnectionView{
		Source: domain.Position{X: 10, Y: 20},
		Dest:   domain.Position{X: 100, Y: 20},
	}

	curve := v.Curve()
	assert.Equal(t, domain.Position{X: 50, Y: 20}, curve[1])
	assert.Equal(t, domain.Position{X: 60, Y: 20}, curve[2])
	assert.Equal(t, "M 10 20 C 50 20 60 20 100 20", v.Path())
}

func TestConnectionKey(t *testing.T) {
	key := domain.ConnectionKey(domain.OutputKey("step1", "data"), domain.InputKey("step2", "value"))
	assert.Equal(t, "step1.output.data.step2.input.value", key)
}

func TestStepJSONRoundTrip(t *testing.T) {
	s, _ := twoSteps().Step("step2")
	s.Inputs["value"] = append(s.Inputs["value"], domain.Constant{Value: "fallback"})

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"type":"connection","step_id":"step1","output_name":"data"}`)

	var back domain.Step
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)
}

func TestUnmarshalStepInputUnknownType(t *testing.T) {
	_, err := domain.UnmarshalStepInput([]byte(`{"type":"magic"}`))
	assert.ErrorIs(t, err, domain.ErrUnknownInputType)
}
