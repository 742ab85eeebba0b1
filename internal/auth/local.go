package auth

import (
	"crypto/subtle"
	"errors"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
)

type LocalProvider struct {
	token  string
	logger internal.Logger
}

func NewLocalProvider(token string, logger internal.Logger) *LocalProvider {
	return &LocalProvider{token: token, logger: logger}
}

func (a *LocalProvider) ValidateToken(token string) error {
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) == 1 {
		return nil
	}
	a.logger.Warn("auth: invalid token")
	return errors.New("invalid token")
}

var _ Provider = (*LocalProvider)(nil)
