package model

// Protocol names one of the three delivery channels. It is also the key of
// a usage record.
type Protocol string

const (
	ProtocolEmail Protocol = "EMAIL"
	ProtocolSMS   Protocol = "SMS"
	ProtocolPush  Protocol = "PUSH"
)

// Protocols lists every valid protocol in a stable order.
var Protocols = []Protocol{ProtocolEmail, ProtocolSMS, ProtocolPush}

// Valid reports whether p is one of the known protocols. The comparison is
// case-sensitive.
func (p Protocol) Valid() bool {
	switch p {
	case ProtocolEmail, ProtocolSMS, ProtocolPush:
		return true
	}
	return false
}

func (p Protocol) String() string {
	return string(p)
}
