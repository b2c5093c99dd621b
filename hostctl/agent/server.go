package agent

import (
	"errors"
	"github.com/gin-gonic/gin"
	"hyperv-facade/hostctl"
	"net/http"
)

type handlerFunc func(c *gin.Context, host hostctl.Host) (interface{}, error)

// NewHandler 宿主机侧代理，把 hostctl.Host 暴露为HTTP JSON接口
func NewHandler(host hostctl.Host, token string) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	v1 := r.Group("/v1")
	v1.Use(func(c *gin.Context) {
		if token != "" && c.GetHeader("Authorization") != "Bearer "+token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		c.Next()
	})
	for op, fn := range ops {
		fn := fn
		v1.POST("/"+op, func(c *gin.Context) {
			res, err := fn(c, host)
			if err != nil {
				c.JSON(statusOf(err), errorBody{Error: err.Error()})
				return
			}
			if res == nil {
				res = struct{}{}
			}
			c.JSON(http.StatusOK, res)
		})
	}
	return r
}

func statusOf(err error) int {
	var be bindError
	switch {
	case errors.Is(err, hostctl.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, hostctl.ErrInvalidHandle):
		return http.StatusGone
	case errors.Is(err, hostctl.ErrUnreachable):
		return http.StatusServiceUnavailable
	case errors.As(err, &be):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type bindError struct{ err error }

func (b bindError) Error() string { return "bind: " + b.err.Error() }

func bind(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return bindError{err}
	}
	return nil
}

var ops = map[string]handlerFunc{
	"ping": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		return nil, host.Ping(c)
	},
	"enumProbe": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req enumReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		size, status := host.EnumProbe(c, req.Enum, req.Index)
		return enumRes{Size: size, Status: status}, nil
	},
	"enumFetch": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req enumReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		name, status := host.EnumFetch(c, req.Enum, req.Index, req.Size)
		return enumRes{Name: name, Status: status}, nil
	},
	"closeEnum": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req enumReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return nil, host.CloseEnum(req.Enum)
	},
	"openCluster": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req handleReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		h, err := host.OpenCluster(c, req.Name)
		return handleRes{Handle: h}, err
	},
	"clusterName": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req handleReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		name, err := host.ClusterName(c, req.Handle)
		return textRes{Value: name}, err
	},
	"openEnum": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req handleReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		h, err := host.OpenEnum(c, req.Cluster, req.Kind)
		return handleRes{Handle: h}, err
	},
	"open": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req handleReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		h, err := host.Open(c, req.Cluster, req.Kind, req.Name)
		return handleRes{Handle: h}, err
	},
	"close": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req handleReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return nil, host.Close(req.Handle)
	},
	"state": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req handleReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		code, owner, err := host.State(c, req.Handle)
		return stateRes{Code: code, Owner: owner}, err
	},
	"control": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req handleReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return statusRes{Status: host.Control(c, req.Handle, req.Control, req.Target)}, nil
	},
	"resourceType": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req handleReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		typ, err := host.ResourceType(c, req.Handle)
		return textRes{Value: typ}, err
	},
	"sharedVolume": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req handleReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		v, err := host.SharedVolume(c, req.Handle)
		return volumeRes{Volume: v}, err
	},
	"isPathOnSharedVolume": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req pathReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		ok, err := host.IsPathOnSharedVolume(c, req.Path)
		return boolRes{Value: ok}, err
	},
	"execQuery": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req queryReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		h, err := host.ExecQuery(c, req.Query)
		return handleRes{Handle: h}, err
	},
	"getObject": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req pathReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		return host.GetObject(c, req.Path)
	},
	"execMethod": func(c *gin.Context, host hostctl.Host) (interface{}, error) {
		var req methodReq
		if err := bind(c, &req); err != nil {
			return nil, err
		}
		out, err := host.ExecMethod(c, req.Path, req.Method, req.In)
		return methodRes{Out: out}, err
	},
}
