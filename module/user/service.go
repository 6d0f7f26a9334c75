package user

import (
	"context"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	errs "conecta/tools/errs"
	security "conecta/tools/security"
)

// Repository is what the service needs from durable account storage.
type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (int64, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	SearchByEmail(ctx context.Context, email string, excludeID int64) (*User, error)
	UpsertContactAlias(ctx context.Context, userID, contactID int64, alias string) error
	ListContacts(ctx context.Context, userID int64) ([]Contact, error)
}

type Service struct {
	repo    Repository
	jwtOpts security.Options
}

func NewService(repo Repository, jwtOpts security.Options) *Service {
	return &Service{repo: repo, jwtOpts: jwtOpts}
}

func (s *Service) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return errs.ErrArgs.WrapMsg("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.repo.CreateUser(ctx, email, string(hash))
	return err
}

// Login verifies the credentials and issues a bearer token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", errs.ErrNoPermission.WrapMsg("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return "", errs.ErrNoPermission.WrapMsg("invalid credentials")
	}
	token, _, err := security.Generate(s.jwtOpts, strconv.FormatInt(u.ID, 10), u.Email)
	return token, err
}

func (s *Service) Profile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) SearchByEmail(ctx context.Context, email string, callerID int64) (*User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errs.ErrArgs.WrapMsg("email is required for search")
	}
	return s.repo.SearchByEmail(ctx, email, callerID)
}

func (s *Service) SaveContact(ctx context.Context, userID, contactID int64, alias string) error {
	if contactID == 0 || strings.TrimSpace(alias) == "" {
		return errs.ErrArgs.WrapMsg("contact id and alias name are required")
	}
	return s.repo.UpsertContactAlias(ctx, userID, contactID, alias)
}

func (s *Service) Contacts(ctx context.Context, userID int64) ([]Contact, error) {
	return s.repo.ListContacts(ctx, userID)
}
