// Package identity 将外部签发的JWT解析为投票会话
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lvdashuaibi/awardvote/internal/model"
)

var ErrInvalidToken = errors.New("无效的令牌")

// Verifier 校验HS256令牌，claims: uid, email, exp
type Verifier struct {
	secret []byte
	admins map[string]bool
}

func NewVerifier(secret string, adminEmails []string) *Verifier {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &Verifier{secret: []byte(secret), admins: admins}
}

// Verify 解析令牌并生成会话
func (v *Verifier) Verify(tokenString string) (*model.Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithJSONNumber())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	uid, err := claimString(claims, "uid")
	if err != nil {
		return nil, err
	}
	email, _ := claims["email"].(string)

	return &model.Session{
		VoterID: uid,
		Email:   email,
		IsAdmin: v.admins[strings.ToLower(email)],
	}, nil
}

// claimString uid 可能是字符串或整数，数字按原文保留以免超过2^53时丢失精度
func claimString(claims jwt.MapClaims, key string) (string, error) {
	switch val := claims[key].(type) {
	case string:
		if val != "" {
			return val, nil
		}
	case json.Number:
		if _, err := val.Int64(); err == nil {
			return val.String(), nil
		}
	}
	return "", fmt.Errorf("%w: 缺少 %s", ErrInvalidToken, key)
}

// Issuer 签发令牌，用于本地开发和测试
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Issue(uid, email string) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)

	claims["uid"] = uid
	claims["email"] = email
	claims["exp"] = time.Now().Add(i.ttl).Unix()

	return token.SignedString(i.secret)
}
