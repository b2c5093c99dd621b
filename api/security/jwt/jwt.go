package jwt

import (
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v4"
	"hyperv-facade/api/e"
	"hyperv-facade/app/utils"
	"hyperv-facade/config"
	"hyperv-facade/hyperv"
	"time"
)

var (
	jwtSecret []byte
	expiresIn = 3 * time.Hour
)

const Type = "jwt"

type Claims struct {
	Auth hyperv.Auth
	jwt.StandardClaims
}

type Token struct {
}

func Setup() {
	jwtSecret = []byte(config.G.App.Token.Secret)
}

// Generate 地址与令牌字段加密后写入claims
func (t Token) Generate(a hyperv.Auth) (string, error) {
	nowTime := time.Now()
	expireTime := nowTime.Add(expiresIn)

	claims := Claims{
		hyperv.Auth{
			Address: utils.AesEncrypt(a.Address),
			Token:   utils.AesEncrypt(a.Token),
			Cluster: a.Cluster,
		},
		jwt.StandardClaims{
			ExpiresAt: expireTime.Unix(),
			IssuedAt:  nowTime.Unix(),
			Issuer:    "hyperv-facade",
		},
	}
	tokenClaims := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenClaims.SignedString(jwtSecret)
}

func (t Token) Parse(token string) (*hyperv.Auth, error) {
	tokenClaims, err := jwt.ParseWithClaims(token, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, fmt.Errorf(e.TokenExpired)
		}
		return nil, fmt.Errorf(e.TokenInvalid)
	}

	if claims, ok := tokenClaims.Claims.(*Claims); ok && tokenClaims.Valid {
		auth := hyperv.Auth{
			Address: utils.AesDecrypt(claims.Auth.Address),
			Token:   utils.AesDecrypt(claims.Auth.Token),
			Cluster: claims.Auth.Cluster,
		}
		return &auth, nil
	} else {
		return nil, fmt.Errorf(e.TokenInvalid)
	}
}

func (t Token) Type() string {
	return Type
}
