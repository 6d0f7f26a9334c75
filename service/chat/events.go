package chat

import (
	"encoding/json"

	errs "conecta/tools/errs"
)

// Realtime channel events. Client-to-server events are decoded and
// validated at the gateway boundary before any dispatch; server-to-
// room events carry a fixed payload shape per tag.
const (
	EventJoinConversation = "join_conversation"
	EventTyping           = "typing"
	EventMessageRead      = "message_read"
	EventReadConfirmation = "message_read_confirmation"
	EventUserStatusUpdate = "user_status_update"
	EventCallOffer        = "call_offer"
	EventCallAnswer       = "call_answer"
	EventIceCandidate     = "ice_candidate"
	EventCallEnd          = "call_end"
	EventNewMessage       = "new_message"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Frame is the wire envelope: {"event": "...", "data": {...}}.
type Frame struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	f := &Frame{}
	if err := json.Unmarshal(raw, f); err != nil {
		return nil, errs.ErrArgs.WrapMsg("malformed frame", "err", err)
	}
	if f.Event == "" {
		return nil, errs.ErrArgs.WrapMsg("frame missing event")
	}
	return f, nil
}

// EncodeFrame marshals a server-to-client frame.
func EncodeFrame(event string, data any) ([]byte, error) {
	var m map[string]any
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	}
	return json.Marshal(Frame{Event: event, Data: m})
}

// ---- client -> server payloads ----

type JoinPayload struct {
	ConversationID string `json:"conversationId"`
}

type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	IsTyping       bool   `json:"isTyping"`
}

type ReadPayload struct {
	ConversationID string `json:"conversationId"`
	MessageID      any    `json:"messageId"` // echoed opaque, number or string
}

// SignalPayload covers the four call-signaling kinds; the gateway
// never interprets offer/answer/candidate contents.
type SignalPayload struct {
	ConversationID string `json:"conversationId"`
	Offer          any    `json:"offer"`
	Answer         any    `json:"answer"`
	Candidate      any    `json:"candidate"`
}

// ---- server -> room payloads ----

type StatusUpdate struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
	Status         string `json:"status"`
}

type TypingUpdate struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type ReadConfirmation struct {
	ConversationID string `json:"conversationId"`
	MessageID      any    `json:"messageId"`
	ReaderID       string `json:"readerId"`
}

type CallOfferOut struct {
	Offer    any    `json:"offer"`
	CallerID string `json:"callerId"`
}

type CallAnswerOut struct {
	Answer      any    `json:"answer"`
	RecipientID string `json:"recipientId"`
}

// IceCandidateOut deliberately carries no sender id: candidates are
// accumulated independent of identity.
type IceCandidateOut struct {
	Candidate any `json:"candidate"`
}

type CallEndOut struct {
	EnderID string `json:"enderId"`
}
