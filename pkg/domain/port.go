package domain

// Direction tells whether a port receives (input) or produces (output).
type Direction string

const (
	DirectionInput  Direction = "input"
	DirectionOutput Direction = "output"
)

// PortKey identifies a port: step, direction and port name.
type PortKey struct {
	StepID    string    `json:"step_id"`
	Direction Direction `json:"direction"`
	Name      string    `json:"name"`
}

// InputKey returns the key of a step's input port.
func InputKey(stepID, name string) PortKey {
	return PortKey{StepID: stepID, Direction: DirectionInput, Name: name}
}

// OutputKey returns the key of a step's output port.
func OutputKey(stepID, name string) PortKey {
	return PortKey{StepID: stepID, Direction: DirectionOutput, Name: name}
}

// String renders the fully qualified key "step.direction.name".
func (k PortKey) String() string {
	return k.StepID + "." + string(k.Direction) + "." + k.Name
}

// PortEntry is a registered port and its last reported position.
type PortEntry struct {
	Key      PortKey  `json:"key"`
	Position Position `json:"position"`
}
