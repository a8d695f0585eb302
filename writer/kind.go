package writer

//
// Kind is an enum that represents a type of document to be written out.
//
type Kind int

const (
	Response Kind = iota
	Capabilities
	Endpoints
)

func (o Kind) String() string {
	return [...]string{"response", "capabilities", "endpoints"}[o]
}
