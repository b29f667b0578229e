package members

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gopkg.in/reform.v1"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrPhoneTaken   = errors.New("phone number already registered")
)

// UserStore is the user registry. Reads by email/phone back registration
// uniqueness checks; the database carries unique indexes as the authority.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	ListApproved(ctx context.Context) ([]*User, error)
	Approve(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountApproved(ctx context.Context) (int, error)
}

type Postgres struct {
	db *reform.DB
}

var _ UserStore = (*Postgres)(nil)

func NewPostgres(db *reform.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, u *User) error {
	if _, err := s.FindByEmail(ctx, u.Email); err == nil {
		return ErrEmailTaken
	} else if err != ErrUserNotFound {
		return err
	}
	var existing User
	err := s.db.SelectOneTo(&existing, "WHERE phone = $1", u.Phone)
	if err == nil {
		return ErrPhoneTaken
	}
	if err != reform.ErrNoRows {
		return errors.Wrap(err, "Failed check phone uniqueness.")
	}

	if u.UserID == "" {
		u.UserID = uuid.New().String()
	}
	if err := s.db.Insert(u); err != nil {
		// the pre-checks race; the unique indexes are the authority
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return errors.Wrapf(err, "Failed create user %q.", u.Email)
	}
	return nil
}

func uniqueViolation(err error) error {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return nil
	}
	switch {
	case strings.Contains(pqErr.Constraint, "phone"):
		return ErrPhoneTaken
	case strings.Contains(pqErr.Constraint, "email"):
		return ErrEmailTaken
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id string) (*User, error) {
	u := &User{UserID: id}
	if err := s.db.Reload(u); err != nil {
		if err == reform.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "Failed get user.")
	}
	return u, nil
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := s.db.SelectOneTo(&u, "WHERE email = $1", email); err != nil {
		if err == reform.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, errors.Wrap(err, "Failed find user by email.")
	}
	return &u, nil
}

func (s *Postgres) List(ctx context.Context) ([]*User, error) {
	list, err := s.db.SelectAllFrom(UserTable, "ORDER BY created_at")
	if err != nil {
		return nil, errors.Wrap(err, "Failed list users.")
	}
	return toUsers(list), nil
}

func (s *Postgres) ListApproved(ctx context.Context) ([]*User, error) {
	list, err := s.db.SelectAllFrom(UserTable, "WHERE is_approved AND role = $1 ORDER BY full_name", RoleUser)
	if err != nil {
		return nil, errors.Wrap(err, "Failed list approved members.")
	}
	return toUsers(list), nil
}

func (s *Postgres) Approve(ctx context.Context, id string) error {
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.IsApproved = true
	if err := s.db.Save(u); err != nil {
		return errors.Wrap(err, "Failed approve user.")
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, id string) error {
	u := &User{UserID: id}
	if err := s.db.Delete(u); err != nil {
		if err == reform.ErrNoRows {
			return ErrUserNotFound
		}
		return errors.Wrap(err, "Failed delete user.")
	}
	return nil
}

func (s *Postgres) CountApproved(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM portal.users WHERE is_approved AND role = $1`, RoleUser).Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "Failed count approved members.")
	}
	return n, nil
}

func toUsers(list []reform.Struct) []*User {
	users := make([]*User, 0, len(list))
	for _, v := range list {
		users = append(users, v.(*User))
	}
	return users
}
