package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken agrupa cualquier fallo de validación: firma, formato, expiración o claims incompletos.
var ErrInvalidToken = errors.New("jwt: token inválido")

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Role lleva el nombre del rol, nunca la matriz de permisos: los permisos se leen del rol vivo en cada petición.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Issuer genera y valida tokens HS256 con un secreto compartido.
type Issuer struct {
	secret     []byte
	issuer     string
	expiration time.Duration
	now        func() time.Time
}

// NewIssuer construye el emisor. expMinutes puede ser negativo en tests para producir tokens ya vencidos.
func NewIssuer(secret, issuer string, expMinutes int) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: secret vacío")
	}
	return &Issuer{
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: time.Duration(expMinutes) * time.Minute,
		now:        time.Now,
	}, nil
}

// Expiration devuelve la vida útil configurada de los tokens.
func (i *Issuer) Expiration() time.Duration {
	return i.expiration
}

// Generate genera un token JWT firmado que incluye userID, email y role.
func (i *Issuer) Generate(userID, email, role string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiration)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse valida firma, método y expiración y devuelve los claims.
// Cualquier fallo se envuelve en ErrInvalidToken.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: user_id ausente", ErrInvalidToken)
	}
	if i.issuer != "" && claims.Issuer != i.issuer {
		return nil, fmt.Errorf("%w: emisor inesperado", ErrInvalidToken)
	}
	return claims, nil
}
