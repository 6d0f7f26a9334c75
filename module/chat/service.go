package chat

import (
	"context"
	"strconv"

	errs "conecta/tools/errs"
)

// Repository is the durable conversation store the service runs on.
type Repository interface {
	EnsureConversation(ctx context.Context, userA, userB int64) (int64, bool, error)
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
	AppendMessage(ctx context.Context, conversationID, senderID int64, content, msgType string) (*Message, error)
	ListConversations(ctx context.Context, userID int64) ([]ConversationSummary, error)
	Contact(ctx context.Context, conversationID, userID int64) (string, *string, error)
	ListMessages(ctx context.Context, conversationID int64) ([]Message, error)
}

// Notifier is the fan-out bridge into the realtime gateway.
type Notifier interface {
	NotifyNewMessage(conversationID string, message any)
}

type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (s *Service) StartConversation(ctx context.Context, userID, targetUserID int64) (int64, bool, error) {
	if targetUserID == 0 || targetUserID == userID {
		return 0, false, errs.ErrArgs.WrapMsg("target user id is required")
	}
	return s.repo.EnsureConversation(ctx, userID, targetUserID)
}

// SendMessage persists the message and only then pushes it to the
// room: a client can never observe a new_message it cannot also fetch
// from history. With nobody subscribed the push is a silent no-op.
func (s *Service) SendMessage(ctx context.Context, senderID, conversationID int64, content, msgType string) (*Message, error) {
	if conversationID == 0 || content == "" {
		return nil, errs.ErrArgs.WrapMsg("conversation id and content are required")
	}
	if msgType == "" {
		msgType = MessageTypeText
	}
	if !ValidMessageType(msgType) {
		return nil, errs.ErrArgs.WrapMsg("unsupported message type", "type", msgType)
	}

	ok, err := s.repo.IsParticipant(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNoPermission.WrapMsg("not a participant")
	}

	m, err := s.repo.AppendMessage(ctx, conversationID, senderID, content, msgType)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyNewMessage(strconv.FormatInt(conversationID, 10), m)
	}
	return m, nil
}

func (s *Service) Conversations(ctx context.Context, userID int64) ([]ConversationSummary, error) {
	return s.repo.ListConversations(ctx, userID)
}

// History gates the read path on participant membership.
func (s *Service) History(ctx context.Context, conversationID, userID int64) (*ConversationDetail, error) {
	ok, err := s.repo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrNoPermission.WrapMsg("access denied to this conversation")
	}

	name, image, err := s.repo.Contact(ctx, conversationID, userID)
	if err != nil && !errs.ErrRecordMiss.Is(err) {
		return nil, err
	}
	if name == "" {
		name = "Usuário"
	}

	msgs, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return &ConversationDetail{
		ConversationID: conversationID,
		ContactName:    name,
		ContactImage:   image,
		ContactStatus:  "Online",
		Messages:       msgs,
	}, nil
}
