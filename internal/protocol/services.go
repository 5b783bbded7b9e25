package protocol

// ServiceName identifies a logical service sharing the connection.
type ServiceName string

const (
	ServiceWhiteboard   ServiceName = "whiteboard"
	ServiceTelemedicine ServiceName = "telemedicine"
)

// ServiceDescriptor groups the message types behind one enable/disable gate.
type ServiceDescriptor struct {
	Name  ServiceName
	Types []MessageType
}

// Services is the static service table. Every MessageType appears exactly once.
var Services = []ServiceDescriptor{
	{
		Name:  ServiceWhiteboard,
		Types: []MessageType{TypeWhiteboardUpdate},
	},
	{
		Name: ServiceTelemedicine,
		Types: []MessageType{
			TypeOffer,
			TypeAnswer,
			TypeICECandidate,
			TypeUserJoined,
			TypeUserLeft,
			TypeChatMessage,
		},
	},
}

var serviceByType = func() map[MessageType]ServiceName {
	m := make(map[MessageType]ServiceName)
	for _, svc := range Services {
		for _, t := range svc.Types {
			if owner, dup := m[t]; dup {
				panic("protocol: message type " + string(t) + " owned by " + string(owner) + " and " + string(svc.Name))
			}
			m[t] = svc.Name
		}
	}
	return m
}()

// ServiceFor returns the service owning a message type.
func ServiceFor(t MessageType) (ServiceName, bool) {
	name, ok := serviceByType[t]
	return name, ok
}

// AllTypes returns every known message type in service table order.
func AllTypes() []MessageType {
	var types []MessageType
	for _, svc := range Services {
		types = append(types, svc.Types...)
	}
	return types
}
