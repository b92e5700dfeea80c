package user

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	resetTokenSalt = []byte("caplc.user.password_reset")

	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// resetTokens makes and checks password reset tokens: "<issued at, base36 unix seconds>-<signature>".
// The signature covers the user id, email and password hash, so a token dies with the first password change.
type resetTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func newResetTokens(secretKey string, ttl time.Duration) resetTokens {
	key := sha256.Sum256(append(append([]byte{}, resetTokenSalt...), secretKey...))
	return resetTokens{key: key[:], ttl: ttl, now: time.Now}
}

// EncodeUID is the user reference sent along a reset token.
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

func decodeUID(uid string) (string, error) {
	id, err := base64.RawURLEncoding.DecodeString(uid)
	return string(id), err
}

func (rt resetTokens) make(usr User) string {
	issuedAt := strconv.FormatInt(rt.now().Unix(), 36)
	return issuedAt + "-" + rt.sign(usr, issuedAt)
}

func (rt resetTokens) check(usr User, token string) error {
	issuedAt, sig, ok := strings.Cut(token, "-")
	if !ok || issuedAt == "" {
		return errInvalidToken
	}
	ts, err := strconv.ParseInt(issuedAt, 36, 64)
	if err != nil {
		return errInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(rt.sign(usr, issuedAt))) {
		return errInvalidToken
	}
	if rt.now().Sub(time.Unix(ts, 0)) > rt.ttl {
		return errTokenExpired
	}
	return nil
}

func (rt resetTokens) sign(usr User, issuedAt string) string {
	h := hmac.New(sha256.New, rt.key)
	for _, part := range [][]byte{[]byte(usr.ID), []byte(usr.Email), usr.PasswordHash, []byte(issuedAt)} {
		h.Write(part)
		h.Write([]byte{0})
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
