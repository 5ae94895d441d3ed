package protocol

type MessageType uint8

const (
	MessageTypeAnnounce    MessageType = 1
	MessageTypeGetPeers    MessageType = 2
	MessageTypePeers       MessageType = 3
	MessageTypeSnapshot    MessageType = 4
	MessageTypeBye         MessageType = 5
	MessageTypeGetSnapshot MessageType = 6
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeAnnounce:
		return "ANNOUNCE"
	case MessageTypeGetPeers:
		return "GET_PEERS"
	case MessageTypePeers:
		return "PEERS"
	case MessageTypeSnapshot:
		return "SNAPSHOT"
	case MessageTypeBye:
		return "BYE"
	case MessageTypeGetSnapshot:
		return "GET_SNAPSHOT"
	default:
		return "UNKNOWN"
	}
}
