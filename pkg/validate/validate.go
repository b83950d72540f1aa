package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// FieldViolation 单个字段的校验失败信息
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

var (
	once     sync.Once
	instance *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// 报告 JSON / form 字段名，而不是 Go 字段名
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01-02", fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		})
		instance = v
	})
	return instance
}

// Struct 校验 DTO 并返回结构化的字段错误列表；全部通过时返回 nil
func Struct(v interface{}) []FieldViolation {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldViolation{{Field: "", Rule: "invalid", Message: err.Error()}}
	}

	out := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldViolation{
			Field:   fieldPath(fe),
			Rule:    fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath 去掉顶层结构体名：LoginRequest.username → username
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "email":
		return "邮箱格式无效"
	case "max":
		return fmt.Sprintf("不能超过 %s", fe.Param())
	case "min":
		return fmt.Sprintf("不能小于 %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("取值必须为 [%s] 之一", fe.Param())
	case "date":
		return "日期格式应为 YYYY-MM-DD"
	case "clock":
		return "时间格式应为 HH:mm"
	case "uuid":
		return "ID 格式无效"
	default:
		return fmt.Sprintf("校验规则 %s 未通过", fe.Tag())
	}
}
