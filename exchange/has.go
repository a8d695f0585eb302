package exchange

// Emulated is the capability value for an endpoint built by composing other calls.
const Emulated = "emulated"

//
// Has is an exchange's self-reported capability map, keyed by canonical endpoint name. Values are
// true, false, or the Emulated token.
//
type Has map[string]interface{}

//
// Clone returns a shallow copy so that callers can never mutate a binding's map.
//
func (o Has) Clone() Has {
	out := make(Has, len(o))
	for k, v := range o {
		out[k] = v
	}

	return out
}
