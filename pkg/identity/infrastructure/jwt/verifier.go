package jwt

import (
	"github.com/dgrijalva/jwt-go"

	"github.com/entoun8/alshami-store/pkg/identity/domain/model"
)

type claims struct {
	Email    string `json:"email"`
	FullName string `json:"name"`
	Image    string `json:"picture"`
	jwt.StandardClaims
}

// Verifier checks HMAC-signed session tokens issued by the auth
// frontend and extracts the subject.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

var _ model.TokenVerifier = &Verifier{}

func (v *Verifier) Verify(token string) (*model.Subject, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.Email == "" {
		return nil, model.ErrInvalidToken
	}
	return &model.Subject{
		Email:    c.Email,
		FullName: c.FullName,
		Image:    c.Image,
	}, nil
}
