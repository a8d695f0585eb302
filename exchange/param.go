package exchange

//
// Kind tags the special handling a parameter receives when it is prompted for.
//
type Kind int

const (
	KindText Kind = iota
	KindSymbol
	KindLimit
	KindSince
)

func (o Kind) String() string {
	return [...]string{"text", "symbol", "limit", "since"}[o]
}

//
// Param declares one parameter of an endpoint.
//
type Param struct {
	Name        string `json:"name"`
	Kind        Kind   `json:"-"`
	Description string `json:"description,omitempty"`
}

//
// P declares a parameter, deriving its kind from its name.
//
func P(name string, description ...string) Param {
	p := Param{Name: name, Kind: kindOf(name)}
	if len(description) > 0 {
		p.Description = description[0]
	}

	return p
}

//
// Positional returns whether or not the parameter is passed positionally. Only symbol, limit, and
// since are.
//
func (o Param) Positional() bool {
	return o.Kind != KindText
}

func kindOf(name string) Kind {
	switch name {
	case "symbol":
		return KindSymbol
	case "limit":
		return KindLimit
	case "since":
		return KindSince
	default:
		return KindText
	}
}
