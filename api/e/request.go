package e

import (
	"github.com/astaxie/beego/validation"
	"hyperv-facade/app/logging"
	"hyperv-facade/app/utils"
	"reflect"
)

type ReqParamError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// ValidReqParam 按valid标签校验请求参数，匿名嵌入的结构体一并校验
func ValidReqParam(obj interface{}) []ReqParamError {
	if logging.IsDebug() {
		logging.L().Debugf("请求参数: %s", utils.ToJson(obj))
	}
	var errors []ReqParamError
	for _, o := range embedded(obj) {
		valid := validation.Validation{}
		if ok, _ := valid.Valid(o); ok {
			continue
		}
		for _, err := range valid.Errors {
			logging.L().Warnf("参数[%s]校验失败: %s", err.Key, err.Message)
			errors = append(errors, ReqParamError{Key: err.Key, Message: err.Message})
		}
	}
	return errors
}

// embedded 返回obj本身以及其匿名嵌入结构体的指针
func embedded(obj interface{}) []interface{} {
	ret := []interface{}{obj}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ret
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ret
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.Anonymous || f.PkgPath != "" || f.Type.Kind() != reflect.Struct || !v.Field(i).CanAddr() {
			continue
		}
		ret = append(ret, embedded(v.Field(i).Addr().Interface())...)
	}
	return ret
}
