package service

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"

	"github.com/fintrack/fintrack/internal/model"
	"github.com/fintrack/fintrack/internal/repository"
)

var (
	UserNotFoundErr  = errors.New("user with this username doesn't exist")
	WrongPasswordErr = errors.New("wrong password")
)

// Authorization is the identity provider capability: an interactive flow
// that ends with an Identity or a failure
type Authorization interface {
	Register(ctx context.Context, user *model.User) (*model.Identity, error)
	Login(ctx context.Context, username, password string) (*model.Identity, error)
}

type Auth struct {
	repo repository.User
	salt string
}

func NewAuth(repo repository.User, salt string) *Auth {
	return &Auth{
		repo: repo,
		salt: salt,
	}
}

func (a *Auth) Register(ctx context.Context, user *model.User) (*model.Identity, error) {
	user.Password = a.generatePassword(user.Password)
	if err := a.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return &model.Identity{UID: user.Username, Avatar: user.Avatar}, nil
}

func (a *Auth) Login(ctx context.Context, username, password string) (*model.Identity, error) {
	user, err := a.repo.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, UserNotFoundErr
	}
	if user.Password != a.generatePassword(password) {
		return nil, WrongPasswordErr
	}
	return &model.Identity{UID: user.Username, Avatar: user.Avatar}, nil
}

func (a *Auth) generatePassword(password string) string {
	hash := sha1.New()
	hash.Write([]byte(password))
	return fmt.Sprintf("%x", hash.Sum([]byte(a.salt)))
}
