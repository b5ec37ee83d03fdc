package codec

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/cacheflow/pkg/domain"
	"github.com/aretw0/cacheflow/pkg/lifecycle"
)

type layoutDocument struct {
	Inputs  map[string]any `mapstructure:"inputs"`
	Outputs map[string]any `mapstructure:"outputs"`
}

// DecodeLayouts parses a layout document into per-step port layouts.
// A position is either an [x, y] pair or an {"x": .., "y": ..} object, the
// shape the HTTP and MCP surfaces use.
func DecodeLayouts(data []byte, format Format) (map[string]lifecycle.Layout, error) {
	raw, err := unmarshal(data, format)
	if err != nil {
		return nil, err
	}
	var doc map[string]layoutDocument
	if err := decodeStrict(raw, &doc); err != nil {
		return nil, err
	}

	var errs collector
	out := make(map[string]lifecycle.Layout, len(doc))
	for _, stepID := range slices.Sorted(maps.Keys(doc)) {
		ld := doc[stepID]
		out[stepID] = lifecycle.Layout{
			Inputs:  positions(&errs, stepID+".inputs", ld.Inputs),
			Outputs: positions(&errs, stepID+".outputs", ld.Outputs),
		}
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeLayoutsFile reads a layout document, choosing the format by extension.
func DecodeLayoutsFile(path string) (map[string]lifecycle.Layout, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	layouts, err := DecodeLayouts(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return layouts, nil
}

func positions(errs *collector, path string, in map[string]any) map[string]domain.Position {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]domain.Position, len(in))
	for _, name := range slices.Sorted(maps.Keys(in)) {
		p, ok := point(in[name])
		if !ok {
			errs.add(path+"."+name, "expected [x, y] or {x, y}", in[name])
			continue
		}
		out[name] = p
	}
	return out
}

func point(v any) (domain.Position, bool) {
	var pair []float64
	if err := mapstructure.Decode(v, &pair); err == nil {
		if len(pair) != 2 {
			return domain.Position{}, false
		}
		return domain.Position{X: pair[0], Y: pair[1]}, true
	}

	var obj struct {
		X *float64 `mapstructure:"x"`
		Y *float64 `mapstructure:"y"`
	}
	if err := decodeStrict(v, &obj); err != nil || obj.X == nil || obj.Y == nil {
		return domain.Position{}, false
	}
	return domain.Position{X: *obj.X, Y: *obj.Y}, true
}
