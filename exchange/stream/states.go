package stream

type state int

const (
	disconnected state = iota // No connection to the websocket feed has been attempted.
	connecting                // A connection to the websocket feed is being established.
	connected                 // The websocket feed accepted the connection.
	subscribed                // The subscribe frame (if any) has been written to the feed.
)

func (o state) String() string {
	return [...]string{"disconnected", "connecting", "connected", "subscribed"}[o]
}
