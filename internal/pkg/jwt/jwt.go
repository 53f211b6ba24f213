package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/user"
)

const (
	TokenTypeAccess = "access"
	TokenTypeStream = "stream"

	streamTokenTTL = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(id user.Identity) (token string, expiresAt int64, err error)
	// GenerateStreamToken issues a short-lived token for the event stream,
	// which is passed as a query parameter.
	GenerateStreamToken(employeeID string) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (employeeID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessExpiration time.Duration
	tokenAuth        *jwtauth.JWTAuth
	now              func() time.Time
}

func NewJWTService(secretKey string, accessExpiration, acceptableSkew time.Duration) Service {
	return &JWTService{
		accessExpiration: accessExpiration,
		tokenAuth:        jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(acceptableSkew)),
		now:              time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(id user.Identity) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessExpiration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": id.EmployeeID,
		"role":        string(id.Role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateStreamToken(employeeID string) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(streamTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"employee_id": employeeID,
		"type":        TokenTypeStream,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(streamTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateStreamToken(tokenString string) (employeeID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeStream {
		return "", jwt.ErrInvalidJWT()
	}

	val, ok := token.Get("employee_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	employeeID, ok = val.(string)
	if !ok || employeeID == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return employeeID, nil
}
