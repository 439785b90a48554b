package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrLeadNotFound  = errors.New("线索不存在")
	ErrAgentNotFound = errors.New("客户经理不存在")
	// ErrForbidden 表示 agent 角色的调用者试图访问不属于自己的线索
	ErrForbidden = errors.New("没有权限访问该线索")
)

// ValidationError 会标明出错的字段，方便 HTTP 层直接返回给前端
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
