// Package session 把对账后的身份投影为服务端可校验的会话令牌。
// 令牌走 HttpOnly Cookie 下发，同时兼容 Authorization: Bearer。
package session

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"go-support-board/internal/domain"
)

const subjectKey = "session.subject"

type Claims struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
	jwt.RegisteredClaims
}

type Manager struct {
	Secret     []byte
	Issuer     string
	TTL        time.Duration
	CookieName string
}

func (m *Manager) Issue(sub *domain.Subject) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:   sub.UID,
		Name:  sub.Name,
		Admin: sub.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.Secret)
}

func (m *Manager) Parse(tokenStr string) (*domain.Subject, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return m.Secret, nil
	}, jwt.WithIssuer(m.Issuer), jwt.WithLeeway(60*time.Second))
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return &domain.Subject{UID: c.UID, Name: c.Name, IsAdmin: c.Admin}, nil
	}
	return nil, errors.New("invalid session token")
}

// Project 在对账成功后立刻调用，把身份写进会话；
// 同一会话的后续请求据此还原主体，无需重新对账。
func (m *Manager) Project(c *gin.Context, u *domain.User) error {
	tok, err := m.Issue(&domain.Subject{UID: u.UUID, Name: u.Username, IsAdmin: u.IsAdmin})
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(m.TTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// FromRequest 尝试还原主体；匿名或令牌无效一律返回 nil（匿名是合法状态）
func (m *Manager) FromRequest(c *gin.Context) *domain.Subject {
	tok := ""
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		tok = strings.TrimPrefix(ah, "Bearer ")
	} else if ck, err := c.Cookie(m.CookieName); err == nil {
		tok = ck
	}
	if tok == "" {
		return nil
	}
	sub, err := m.Parse(tok)
	if err != nil {
		return nil
	}
	return sub
}

// SetSubject 由中间件调用，把主体挂到请求上下文
func SetSubject(c *gin.Context, sub *domain.Subject) {
	if sub != nil {
		c.Set(subjectKey, sub)
	}
}

// Subject 取当前请求主体，匿名返回 nil
func Subject(c *gin.Context) *domain.Subject {
	v, ok := c.Get(subjectKey)
	if !ok {
		return nil
	}
	sub, _ := v.(*domain.Subject)
	return sub
}
