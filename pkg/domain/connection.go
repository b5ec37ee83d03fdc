package domain

import "fmt"

// CurveHandle is the horizontal distance of the bezier control points
// from each endpoint of a drawn connection.
const CurveHandle = 40

// ConnectionView is a render-ready connection whose both endpoints are
// currently registered. Views are derived on demand and never stored.
type ConnectionView struct {
	Key              string   `json:"key"`
	SourceStepID     string   `json:"source_step_id"`
	SourceOutputName string   `json:"source_output_name"`
	DestStepID       string   `json:"dest_step_id"`
	DestInputName    string   `json:"dest_input_name"`
	Source           Position `json:"source"`
	Dest             Position `json:"dest"`

	// SourceSlot is the index of the output among the source step's
	// declared outputs, or -1 when the step does not declare it.
	SourceSlot int `json:"source_slot"`
	// DestSlot is the index of the input among the destination step's
	// input names in ascending order.
	DestSlot int `json:"dest_slot"`
}

// ConnectionKey joins the two fully qualified port keys.
func ConnectionKey(source, dest PortKey) string {
	return source.String() + "." + dest.String()
}

// SourceKey returns the key of the output port the view starts from.
func (v ConnectionView) SourceKey() PortKey {
	return OutputKey(v.SourceStepID, v.SourceOutputName)
}

// DestKey returns the key of the input port the view ends at.
func (v ConnectionView) DestKey() PortKey {
	return InputKey(v.DestStepID, v.DestInputName)
}

// Curve returns the four points of the cubic bezier used to draw the
// connection: it leaves the source and enters the destination horizontally.
func (v ConnectionView) Curve() [4]Position {
	return [4]Position{
		v.Source,
		{X: v.Source.X + CurveHandle, Y: v.Source.Y},
		{X: v.Dest.X - CurveHandle, Y: v.Dest.Y},
		v.Dest,
	}
}

// Path renders Curve as an SVG path.
func (v ConnectionView) Path() string {
	c := v.Curve()
	return fmt.Sprintf("M %g %g C %g %g %g %g %g %g",
		c[0].X, c[0].Y, c[1].X, c[1].Y, c[2].X, c[2].Y, c[3].X, c[3].Y)
}
