package protocol

// Visitor has one method per frame variant.
type Visitor interface {
	VisitWhiteboardUpdate(*WhiteboardUpdate)
	VisitOffer(*Offer)
	VisitAnswer(*Answer)
	VisitICECandidate(*ICECandidate)
	VisitUserJoined(*UserJoined)
	VisitUserLeft(*UserLeft)
	VisitChatMessage(*ChatMessage)
}

// Accept implements Message for each variant.
func (m *WhiteboardUpdate) Accept(v Visitor) { v.VisitWhiteboardUpdate(m) }
func (m *Offer) Accept(v Visitor)            { v.VisitOffer(m) }
func (m *Answer) Accept(v Visitor)           { v.VisitAnswer(m) }
func (m *ICECandidate) Accept(v Visitor)     { v.VisitICECandidate(m) }
func (m *UserJoined) Accept(v Visitor)       { v.VisitUserJoined(m) }
func (m *UserLeft) Accept(v Visitor)         { v.VisitUserLeft(m) }
func (m *ChatMessage) Accept(v Visitor)      { v.VisitChatMessage(m) }

// VisitorFuncs is a Visitor built from optional callbacks. Nil fields are skipped.
type VisitorFuncs struct {
	WhiteboardUpdate func(*WhiteboardUpdate)
	Offer            func(*Offer)
	Answer           func(*Answer)
	ICECandidate     func(*ICECandidate)
	UserJoined       func(*UserJoined)
	UserLeft         func(*UserLeft)
	ChatMessage      func(*ChatMessage)
}

var _ Visitor = VisitorFuncs{}

// VisitWhiteboardUpdate calls f.WhiteboardUpdate if set.
func (f VisitorFuncs) VisitWhiteboardUpdate(m *WhiteboardUpdate) {
	if f.WhiteboardUpdate != nil {
		f.WhiteboardUpdate(m)
	}
}

// VisitOffer calls f.Offer if set.
func (f VisitorFuncs) VisitOffer(m *Offer) {
	if f.Offer != nil {
		f.Offer(m)
	}
}

// VisitAnswer calls f.Answer if set.
func (f VisitorFuncs) VisitAnswer(m *Answer) {
	if f.Answer != nil {
		f.Answer(m)
	}
}

// VisitICECandidate calls f.ICECandidate if set.
func (f VisitorFuncs) VisitICECandidate(m *ICECandidate) {
	if f.ICECandidate != nil {
		f.ICECandidate(m)
	}
}

// VisitUserJoined calls f.UserJoined if set.
func (f VisitorFuncs) VisitUserJoined(m *UserJoined) {
	if f.UserJoined != nil {
		f.UserJoined(m)
	}
}

// VisitUserLeft calls f.UserLeft if set.
func (f VisitorFuncs) VisitUserLeft(m *UserLeft) {
	if f.UserLeft != nil {
		f.UserLeft(m)
	}
}

// VisitChatMessage calls f.ChatMessage if set.
func (f VisitorFuncs) VisitChatMessage(m *ChatMessage) {
	if f.ChatMessage != nil {
		f.ChatMessage(m)
	}
}
