package api

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/fulldump/box"
)

var ErrUnauthorized = errors.New("unauthorized")

// Authenticate requires X-Api-Key and X-Api-Secret to match. An empty key
// and secret disable authentication.
func Authenticate(apiKey, apiSecret string) box.I {
	return func(next box.H) box.H {
		if apiKey == "" && apiSecret == "" {
			return next
		}
		return func(ctx context.Context) {
			r := box.GetRequest(ctx)

			keyOk := subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Api-Key")), []byte(apiKey)) == 1
			secretOk := subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Api-Secret")), []byte(apiSecret)) == 1
			if !keyOk || !secretOk {
				box.SetError(ctx, ErrUnauthorized)
				return
			}

			next(ctx)
		}
	}
}
