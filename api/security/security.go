package security

import (
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"hyperv-facade/api/e"
	"hyperv-facade/api/security/bearer"
	"hyperv-facade/api/security/jwt"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"hyperv-facade/config"
	"hyperv-facade/hyperv"
	"net/http"
)

const (
	CurrentAuth = "CURRENT_AUTH"
)

type Token interface {
	Generate(a hyperv.Auth) (string, error)
	Parse(t string) (*hyperv.Auth, error)
	Type() string
}

var tokenTool Token = bearer.Token{}

func Setup() {
	tokenType := config.G.App.Token.Type
	tokenTool = getTokenTool(tokenType)
	setUpTokenTool()
	fmt.Println("当前使用token认证方式为:", tokenTool.Type())
}

func setUpTokenTool() {
	utils.SetAesKey(config.G.App.Token.Secret)
	jwt.Setup()
}

// GetToken
// @Summary      获取令牌
// @Description  传入Hyper-V主机地址与访问令牌，连接成功后签发令牌
// @Tags         认证
// @Accept       application/json
// @Produce      application/json
// @Param        object  body      hyperv.Auth  true  "认证信息"
// @Success      200     {string}  json         "{"code":"2000","message":"成功","data":{"token":""}}"
// @Failure      400     {string}  json         "{"code":"","message":"失败","data":{}"
// @Failure      502     {string}  json         "{"code":"4001","message":"连接失败","data":{}"
// @Router       /token [post]
func GetToken(c *gin.Context) {
	r := e.Gin{C: c}
	auth := hyperv.Auth{}
	err := c.ShouldBindBodyWith(&auth, binding.JSON)
	if err != nil {
		r.ResponseError(http.StatusBadRequest, e.BadRequest, nil)
		return
	}

	errors := e.ValidReqParam(&auth)
	if len(errors) > 0 {
		r.ResponseErrors(http.StatusBadRequest, errors, nil)
		return
	}

	hv, err := hyperv.Get(auth)
	if err != nil {
		r.ResponseFail(err)
		return
	}
	if auth.Cluster != "" {
		if _, err = hv.ConnectCluster(c, auth.Cluster); err != nil {
			r.ResponseFail(err)
			return
		}
	}

	token, err := tokenTool.Generate(auth)
	if err != nil {
		r.ResponseError(http.StatusInternalServerError, e.SystemError, nil)
		return
	}

	r.ResponseOk(http.StatusOK, e.Success, map[string]string{
		"token": token,
	})
}

func Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		var code, message string
		code = e.Success
		token := c.GetHeader("token")
		if token == "" {
			code = e.Unauthorized
			message = e.GetMessage(code)
		} else {
			auth, err := tokenTool.Parse(token)
			if err != nil {
				code = err.Error()
				message = e.GetMessage(code)
			} else {
				c.Set(CurrentAuth, *auth)
			}
		}

		if code != e.Success {
			logging.L().Debugf("请求[%s %s]认证失败: %s", c.Request.Method, c.Request.URL.Path, message)
			c.JSON(http.StatusUnauthorized, e.Response{
				Code:    code,
				Message: message,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetCurrentAuth(c *gin.Context) hyperv.Auth {
	auth, _ := c.Get(CurrentAuth)
	return auth.(hyperv.Auth)
}

func getTokenTool(t string) Token {
	switch t {
	case jwt.Type:
		return jwt.Token{}
	default:
		return bearer.Token{}
	}
}
