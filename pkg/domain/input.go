package domain

import (
	"encoding/json"
	"fmt"
)

// Input kinds, used as the JSON discriminator of a StepInput.
const (
	InputTypeConstant   = "constant"
	InputTypeConnection = "connection"
)

// StepInput is one entry of an input slot: either a Constant or a
// Connection. The set is closed; match it with a type switch.
type StepInput interface {
	inputKind() string
}

// Constant is a literal parameter value supplied directly to an input.
type Constant struct {
	Value string `json:"value" yaml:"value"`
}

// Connection references another step's output. The referenced step need
// not exist; such a reference is simply not renderable.
type Connection struct {
	StepID     string `json:"step_id" yaml:"step_id"`
	OutputName string `json:"output_name" yaml:"output_name"`
}

func (Constant) inputKind() string   { return InputTypeConstant }
func (Connection) inputKind() string { return InputTypeConnection }

// Source returns the port key of the referenced output.
func (c Connection) Source() PortKey {
	return OutputKey(c.StepID, c.OutputName)
}

func (c Constant) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{InputTypeConstant, c.Value})
}

func (c Connection) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type       string `json:"type"`
		StepID     string `json:"step_id"`
		OutputName string `json:"output_name"`
	}{InputTypeConnection, c.StepID, c.OutputName})
}

// UnmarshalStepInput decodes the tagged JSON form produced by the
// MarshalJSON methods of Constant and Connection.
func UnmarshalStepInput(data []byte) (StepInput, error) {
	var raw struct {
		Type       string `json:"type"`
		Value      string `json:"value"`
		StepID     string `json:"step_id"`
		OutputName string `json:"output_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	switch raw.Type {
	case InputTypeConstant:
		return Constant{Value: raw.Value}, nil
	case InputTypeConnection:
		return Connection{StepID: raw.StepID, OutputName: raw.OutputName}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInputType, raw.Type)
	}
}

// UnmarshalJSON restores the tagged step inputs.
func (s *Step) UnmarshalJSON(data []byte) error {
	type plain Step
	var raw struct {
		plain
		Inputs map[string][]json.RawMessage `json:"inputs"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Step(raw.plain)
	s.Inputs = make(map[string][]StepInput, len(raw.Inputs))
	for name, entries := range raw.Inputs {
		slot := make([]StepInput, 0, len(entries))
		for i, entry := range entries {
			in, err := UnmarshalStepInput(entry)
			if err != nil {
				return fmt.Errorf("step %q input %q entry %d: %w", s.ID, name, i, err)
			}
			slot = append(slot, in)
		}
		s.Inputs[name] = slot
	}
	return nil
}
