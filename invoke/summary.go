package invoke

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	maxListedKeys = 10
	maxSampleKeys = 5
)

//
// Shape classifies an encoded result.
//
type Shape int

const (
	Empty Shape = iota
	Object
	Array
	Scalar
	Text // The result could not be encoded as JSON.
)

//
// Summary describes a result: its encoded form plus what the operator should be told about it.
//
type Summary struct {
	Shape     Shape
	JSON      []byte
	Text      string
	Count     int
	Keys      []string
	Truncated bool
}

//
// Summarize encodes a result and works out its shape, size, and leading keys.
//
func Summarize(result interface{}) Summary {
	if result == nil {
		return Summary{Shape: Empty}
	}

	b, err := json.Marshal(result)
	if err != nil {
		return Summary{Shape: Text, Text: fmt.Sprintf("%v", result)}
	}

	//
	// Typed nils (an empty slice of trades, a nil map) carry no data either.
	//
	doc := gjson.ParseBytes(b)
	if doc.Type == gjson.Null {
		return Summary{Shape: Empty}
	}

	switch {
	case doc.IsObject():
		s := Summary{Shape: Object, JSON: b}

		doc.ForEach(func(k, _ gjson.Result) bool {
			s.Count++

			if len(s.Keys) < maxListedKeys {
				s.Keys = append(s.Keys, k.String())
			} else {
				s.Truncated = true
			}

			return true
		})

		return s
	case doc.IsArray():
		items := doc.Array()
		s := Summary{Shape: Array, JSON: b, Count: len(items)}

		if len(items) > 0 && items[0].IsObject() {
			items[0].ForEach(func(k, _ gjson.Result) bool {
				s.Keys = append(s.Keys, k.String())

				return len(s.Keys) < maxSampleKeys
			})
		}

		return s
	default:
		return Summary{Shape: Scalar, JSON: b}
	}
}

//
// Lines returns the human readable description of the result.
//
func (o Summary) Lines() []string {
	switch o.Shape {
	case Object:
		lines := []string{fmt.Sprintf("Response contains %d keys", o.Count)}

		if o.Truncated {
			return append(lines, "  - "+strings.Join(o.Keys, ", ")+"...")
		}

		for _, k := range o.Keys {
			lines = append(lines, "  - "+k)
		}

		return lines
	case Array:
		lines := []string{fmt.Sprintf("Response is a list with %d items", o.Count)}

		if len(o.Keys) > 0 {
			lines = append(lines, "  - Sample keys: "+strings.Join(o.Keys, ", "))
		}

		return lines
	default:
		return nil
	}
}
