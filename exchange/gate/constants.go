package gate

import "time"

const (
	ID   = "gate"
	Name = "Gate.io"

	APIVersion = "v4"

	BaseURL = "https://api.gateio.ws/api/v4"
	WSURL   = "wss://api.gateio.ws/ws/v4/"

	DefaultRateLimit = 100 * time.Millisecond
)
