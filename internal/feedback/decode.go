package feedback

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotObject is returned by Decode when the payload is valid JSON but not an
// object.
var ErrNotObject = errors.New("feedback: payload is not a JSON object")

// Decode turns a model reply object into a Report. It never validates the
// shape: unknown fields are ignored, missing scores become 0, missing tips
// become empty and numeric strings or floats are rounded to ints.
func Decode(raw []byte) (Report, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Report{}, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Report{}, ErrNotObject
	}

	return Report{
		OverallScore: toInt(lookup(obj, "overallScore", "overall_score", "overall")),
		ATS:          toCategory(lookup(obj, "ats", "ATS")),
		ToneAndStyle: toCategory(lookup(obj, "toneAndStyle", "tone_and_style", "tone")),
		Content:      toCategory(lookup(obj, "content")),
		Structure:    toCategory(lookup(obj, "structure")),
		Skills:       toCategory(lookup(obj, "skills")),
	}, nil
}

// lookup returns the first key present, falling back to a case-insensitive
// match.
func lookup(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v
		}
	}
	for k, v := range obj {
		for _, want := range keys {
			if strings.EqualFold(k, want) {
				return v
			}
		}
	}
	return nil
}

func toCategory(v any) Category {
	obj, ok := v.(map[string]any)
	if !ok {
		return Category{Tips: []Tip{}}
	}
	return Category{
		Score: toInt(lookup(obj, "score")),
		Tips:  toTips(lookup(obj, "tips")),
	}
}

func toTips(v any) []Tip {
	switch t := v.(type) {
	case []any:
		out := make([]Tip, 0, len(t))
		for _, item := range t {
			if tip, ok := toTip(item); ok {
				out = append(out, tip)
			}
		}
		return out
	case map[string]any:
		// A lone tip object instead of an array.
		if tip, ok := toTip(t); ok {
			return []Tip{tip}
		}
	}
	return []Tip{}
}

func toTip(v any) (Tip, bool) {
	switch t := v.(type) {
	case map[string]any:
		return Tip{
			Kind:        toKind(toString(lookup(t, "type", "kind"))),
			Message:     toString(lookup(t, "tip", "message")),
			Explanation: toString(lookup(t, "explanation")),
		}, true
	case string:
		if strings.TrimSpace(t) == "" {
			return Tip{}, false
		}
		return Tip{Message: t}, true
	default:
		return Tip{}, false
	}
}

func toKind(s string) TipKind {
	switch {
	case strings.EqualFold(s, string(TipGood)):
		return TipGood
	case strings.EqualFold(s, string(TipImprove)):
		return TipImprove
	default:
		return TipKind(s)
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

func toInt(v any) int {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(math.Round(f))
}
