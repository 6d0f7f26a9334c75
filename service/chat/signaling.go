package chat

import (
	"conecta/logger"
)

// Relay forwards call-setup messages between the members of a room,
// always excluding the sender's own connection. It is a pure
// opaque-payload router: no SDP/ICE validation and no call-state
// machine — offer/answer/end ordering is the clients' contract.
type Relay struct {
	reg *Registry
}

func NewRelay(reg *Registry) *Relay {
	return &Relay{reg: reg}
}

func (r *Relay) Offer(sender *Client, conversationID string, offer any) {
	r.emit(sender, conversationID, EventCallOffer, CallOfferOut{
		Offer:    offer,
		CallerID: sender.UserID,
	})
}

func (r *Relay) Answer(sender *Client, conversationID string, answer any) {
	r.emit(sender, conversationID, EventCallAnswer, CallAnswerOut{
		Answer:      answer,
		RecipientID: sender.UserID,
	})
}

func (r *Relay) Candidate(sender *Client, conversationID string, candidate any) {
	r.emit(sender, conversationID, EventIceCandidate, IceCandidateOut{
		Candidate: candidate,
	})
}

func (r *Relay) End(sender *Client, conversationID string) {
	r.emit(sender, conversationID, EventCallEnd, CallEndOut{
		EnderID: sender.UserID,
	})
}

// emit delivers to every connection currently joined to the room
// except the sender's own connection. The sender's other devices in
// the same room do receive the event.
func (r *Relay) emit(sender *Client, conversationID, event string, payload any) {
	members := r.reg.MembersOf(conversationID)
	if len(members) == 0 {
		return
	}
	data, err := EncodeFrame(event, payload)
	if err != nil {
		logger.Errorf("[relay] encode %s: %v", event, err)
		return
	}
	for _, m := range members {
		if m.ConnID == sender.ConnID {
			continue
		}
		m.TrySend(data)
	}
}
