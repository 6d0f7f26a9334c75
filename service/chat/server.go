package chat

import (
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"conecta/logger"
	decode "conecta/tools/decode"
	errs "conecta/tools/errs"
)

// Config tunes the gateway. Zero values fall back to defaults.
type Config struct {
	SendQueueSize  int
	FanoutWorkers  int
	FanoutQueue    int
	AllowAllOrigin bool // dev convenience; keep false behind a proxy that checks Origin
}

// Server is the realtime gateway: it owns the connection lifecycle
// and the connection-to-handler wiring, and delegates inbound events
// to the registry, presence tracker and signaling relay.
type Server struct {
	cfg      Config
	auth     Authenticator
	upgrader websocket.Upgrader
	reg      *Registry
	presence *Presence
	relay    *Relay
	fanout   *Fanout
	disp     *Dispatcher
}

func NewServer(cfg Config, auth Authenticator, mirror Mirror) *Server {
	reg := NewRegistry()
	s := &Server{
		cfg:      cfg,
		auth:     auth,
		upgrader: newUpgrader(cfg),
		reg:      reg,
		presence: NewPresence(mirror),
		relay:    NewRelay(reg),
		fanout:   NewFanout(cfg.FanoutWorkers, cfg.FanoutQueue),
		disp:     NewDispatcher(),
	}
	s.registerHandlers()
	return s
}

func (s *Server) Registry() *Registry { return s.reg }

func (s *Server) Close() { s.fanout.Close() }

func (s *Server) registerHandlers() {
	s.disp.Register(EventJoinConversation, s.handleJoin)
	s.disp.Register(EventTyping, s.handleTyping)
	s.disp.Register(EventMessageRead, s.handleMessageRead)
	s.disp.Register(EventCallOffer, s.handleCallOffer)
	s.disp.Register(EventCallAnswer, s.handleCallAnswer)
	s.disp.Register(EventIceCandidate, s.handleIceCandidate)
	s.disp.Register(EventCallEnd, s.handleCallEnd)
}

// NotifyNewMessage is the fan-out bridge for the durable write path.
// The caller must invoke it strictly after the message insert has
// committed, so a connection never observes a new_message it cannot
// also retrieve via the history endpoint. No subscribers is a silent
// no-op: delivery is best-effort, clients reconcile via history.
func (s *Server) NotifyNewMessage(conversationID string, message any) {
	members := s.reg.MembersOf(conversationID)
	if len(members) == 0 {
		return
	}
	data, err := EncodeFrame(EventNewMessage, message)
	if err != nil {
		logger.Errorf("[gateway] encode new_message conv=%s: %v", conversationID, err)
		return
	}
	s.fanout.Broadcast(members, data)
}

// ---- inbound event handlers ----

func (s *Server) handleJoin(c *Client, data map[string]any) error {
	p, err := decode.Map[JoinPayload](data)
	if err != nil {
		return errs.ErrArgs.WrapMsg("join payload", "err", err)
	}
	if p.ConversationID == "" {
		return errs.ErrArgs.WrapMsg("join missing conversationId")
	}
	t := s.reg.Join(c, p.ConversationID)
	s.presence.OnTransition(t)
	logger.Debug("joined conversation",
		append(zapConn(c.ConnID, c.UserID), zap.String("conversation", p.ConversationID))...)
	return nil
}

func (s *Server) handleTyping(c *Client, data map[string]any) error {
	p, err := decode.Map[TypingPayload](data)
	if err != nil {
		return errs.ErrArgs.WrapMsg("typing payload", "err", err)
	}
	if p.ConversationID == "" {
		return errs.ErrArgs.WrapMsg("typing missing conversationId")
	}
	s.emitToRoom(c, p.ConversationID, EventTyping, TypingUpdate{
		UserID:   c.UserID,
		IsTyping: p.IsTyping,
	})
	return nil
}

func (s *Server) handleMessageRead(c *Client, data map[string]any) error {
	p, err := decode.Map[ReadPayload](data)
	if err != nil {
		return errs.ErrArgs.WrapMsg("message_read payload", "err", err)
	}
	if p.ConversationID == "" || p.MessageID == nil {
		return errs.ErrArgs.WrapMsg("message_read missing fields")
	}
	s.emitToRoom(c, p.ConversationID, EventReadConfirmation, ReadConfirmation{
		ConversationID: p.ConversationID,
		MessageID:      p.MessageID,
		ReaderID:       c.UserID,
	})
	return nil
}

func (s *Server) handleCallOffer(c *Client, data map[string]any) error {
	p, err := signalPayload(data)
	if err != nil {
		return err
	}
	s.relay.Offer(c, p.ConversationID, p.Offer)
	return nil
}

func (s *Server) handleCallAnswer(c *Client, data map[string]any) error {
	p, err := signalPayload(data)
	if err != nil {
		return err
	}
	s.relay.Answer(c, p.ConversationID, p.Answer)
	return nil
}

func (s *Server) handleIceCandidate(c *Client, data map[string]any) error {
	p, err := signalPayload(data)
	if err != nil {
		return err
	}
	s.relay.Candidate(c, p.ConversationID, p.Candidate)
	return nil
}

func (s *Server) handleCallEnd(c *Client, data map[string]any) error {
	p, err := signalPayload(data)
	if err != nil {
		return err
	}
	s.relay.End(c, p.ConversationID)
	return nil
}

func signalPayload(data map[string]any) (*SignalPayload, error) {
	p, err := decode.Map[SignalPayload](data)
	if err != nil {
		return nil, errs.ErrArgs.WrapMsg("signal payload", "err", err)
	}
	if p.ConversationID == "" {
		return nil, errs.ErrArgs.WrapMsg("signal missing conversationId")
	}
	return p, nil
}

// emitToRoom sends to every room member except the sender's own
// connection (typing and read receipts follow signaling semantics).
func (s *Server) emitToRoom(sender *Client, conversationID, event string, payload any) {
	members := s.reg.MembersOf(conversationID)
	if len(members) == 0 {
		return
	}
	data, err := EncodeFrame(event, payload)
	if err != nil {
		logger.Errorf("[gateway] encode %s: %v", event, err)
		return
	}
	for _, m := range members {
		if m.ConnID == sender.ConnID {
			continue
		}
		m.TrySend(data)
	}
}

func zapConn(connID, userID string) []zap.Field {
	return []zap.Field{zap.String("conn", connID), zap.String("user", userID)}
}
