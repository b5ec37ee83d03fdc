package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/cacheflow/pkg/domain"
)

type document struct {
	Meta  map[string]any          `json:"meta" yaml:"meta" mapstructure:"meta"`
	Steps map[string]stepDocument `json:"steps" yaml:"steps" mapstructure:"steps"`
}

type stepDocument struct {
	ID        string            `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Component componentDocument `json:"component" yaml:"component" mapstructure:"component"`
	Inputs    map[string][]any  `json:"inputs" yaml:"inputs" mapstructure:"inputs"`
	Outputs   []string          `json:"outputs" yaml:"outputs" mapstructure:"outputs"`
	Position  []float64         `json:"position" yaml:"position,flow" mapstructure:"position"`
}

type componentDocument struct {
	Type string `json:"type" yaml:"type" mapstructure:"type"`
}

type connectionDocument struct {
	Step   string `json:"step" yaml:"step"`
	Output string `json:"output" yaml:"output"`
}

// entryDocument accepts both the compact {step, output} form and the
// tagged form written by domain JSON.
type entryDocument struct {
	Type       string `mapstructure:"type"`
	Value      any    `mapstructure:"value"`
	Step       string `mapstructure:"step"`
	Output     string `mapstructure:"output"`
	StepID     string `mapstructure:"step_id"`
	OutputName string `mapstructure:"output_name"`
}

// Decode parses a workflow document.
func Decode(data []byte, format Format) (domain.Workflow, error) {
	raw, err := unmarshal(data, format)
	if err != nil {
		return domain.Workflow{}, err
	}
	var doc document
	if err := decodeStrict(raw, &doc); err != nil {
		return domain.Workflow{}, err
	}
	return doc.workflow()
}

// DecodeFile reads a workflow document, choosing the format by extension.
func DecodeFile(path string) (domain.Workflow, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return domain.Workflow{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Workflow{}, fmt.Errorf("failed to read workflow: %w", err)
	}
	w, err := Decode(data, format)
	if err != nil {
		return domain.Workflow{}, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Encode writes w as a workflow document.
func Encode(out io.Writer, w domain.Workflow, format Format) error {
	doc := newDocument(w)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func decodeStrict(raw any, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      result,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

func (d document) workflow() (domain.Workflow, error) {
	var errs collector
	w := domain.NewWorkflow()
	maps.Copy(w.Meta, d.Meta)

	for _, id := range slices.Sorted(maps.Keys(d.Steps)) {
		sd := d.Steps[id]
		path := "steps." + id
		if id == "" {
			errs.add(path, "step id must not be empty", nil)
			continue
		}
		if sd.ID != "" && sd.ID != id {
			errs.add(path+".id", fmt.Sprintf("does not match key %q", id), sd.ID)
		}

		step := domain.Step{
			ID:        id,
			Component: domain.Component{Type: sd.Component.Type},
			Inputs:    make(map[string][]domain.StepInput, len(sd.Inputs)),
			Outputs:   dedupe(sd.Outputs),
			Position:  domain.DefaultPosition,
		}
		switch len(sd.Position) {
		case 0:
		case 2:
			step.Position = domain.Position{X: sd.Position[0], Y: sd.Position[1]}
		default:
			errs.add(path+".position", "expected [x, y]", sd.Position)
		}

		for _, name := range slices.Sorted(maps.Keys(sd.Inputs)) {
			inPath := path + ".inputs." + name
			if name == "" {
				errs.add(inPath, "input name must not be empty", nil)
				continue
			}
			slot := make([]domain.StepInput, 0, len(sd.Inputs[name]))
			for i, entry := range sd.Inputs[name] {
				in, err := decodeEntry(entry)
				if err != nil {
					errs.add(fmt.Sprintf("%s[%d]", inPath, i), err.Error(), entry)
					continue
				}
				slot = append(slot, in)
			}
			step.Inputs[name] = slot
		}
		w.Steps[id] = step
	}

	if err := errs.err(); err != nil {
		return domain.Workflow{}, err
	}
	return w, nil
}

func decodeEntry(entry any) (domain.StepInput, error) {
	switch v := entry.(type) {
	case string:
		return domain.Constant{Value: v}, nil
	case bool, int, int64, float64:
		return domain.Constant{Value: fmt.Sprint(v)}, nil
	case map[string]any:
		var e entryDocument
		if err := decodeStrict(v, &e); err != nil {
			return nil, err
		}
		return e.input()
	}
	return nil, fmt.Errorf("expected a constant or a connection")
}

func (e entryDocument) input() (domain.StepInput, error) {
	switch e.Type {
	case domain.InputTypeConstant:
		if e.Value == nil {
			return nil, fmt.Errorf("constant without value")
		}
		return domain.Constant{Value: fmt.Sprint(e.Value)}, nil
	case domain.InputTypeConnection, "":
		step := firstNonEmpty(e.Step, e.StepID)
		output := firstNonEmpty(e.Output, e.OutputName)
		if step == "" || output == "" {
			return nil, fmt.Errorf("connection needs step and output")
		}
		return domain.Connection{StepID: step, OutputName: output}, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownInputType, e.Type)
}

func newDocument(w domain.Workflow) document {
	doc := document{
		Meta:  map[string]any(w.Meta),
		Steps: make(map[string]stepDocument, w.Len()),
	}
	if doc.Meta == nil {
		doc.Meta = map[string]any{}
	}
	for id, s := range w.Steps {
		sd := stepDocument{
			Component: componentDocument{Type: s.Component.Type},
			Inputs:    make(map[string][]any, len(s.Inputs)),
			Outputs:   s.Outputs,
			Position:  []float64{s.Position.X, s.Position.Y},
		}
		if sd.Outputs == nil {
			sd.Outputs = []string{}
		}
		for name, slot := range s.Inputs {
			entries := make([]any, 0, len(slot))
			for _, in := range slot {
				switch v := in.(type) {
				case domain.Constant:
					entries = append(entries, v.Value)
				case domain.Connection:
					entries = append(entries, connectionDocument{Step: v.StepID, Output: v.OutputName})
				}
			}
			sd.Inputs[name] = entries
		}
		doc.Steps[id] = sd
	}
	return doc
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !slices.Contains(out, n) {
			out = append(out, n)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
