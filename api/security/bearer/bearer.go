package bearer

import (
	"encoding/json"
	"fmt"
	"hyperv-facade/api/e"
	"hyperv-facade/app/utils"
	"hyperv-facade/hyperv"
)

const Type = "bearer"

// Token 认证信息整体加密后作为令牌，不过期
type Token struct {
}

func (t Token) Generate(a hyperv.Auth) (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return utils.AesEncrypt(string(b)), nil
}

func (t Token) Parse(token string) (*hyperv.Auth, error) {
	var a hyperv.Auth
	deToken := utils.AesDecrypt(token)
	err := json.Unmarshal([]byte(deToken), &a)
	if err != nil || a.Address == "" {
		return nil, fmt.Errorf(e.TokenInvalid)
	}
	return &a, nil
}

func (t Token) Type() string {
	return Type
}
