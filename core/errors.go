package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 错误分类与恢复策略：
//   - CAPABILITY_UNAVAILABLE：可选能力缺失（编码器/远程排序服务），
//     调用方降级到词法检索或 pointwise 排序，绝不视为致命错误
//   - NOT_FOUND：实体未知（user/cuisine/item），查找方返回中性默认值
//   - INVALID_INPUT：输入不合法（矩阵/标签/分组长度不匹配等），在调用边界拒绝
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "CAPABILITY_UNAVAILABLE"）
	Message string // 错误消息
	Module  string // 模块名称（如 "recall", "rank", "store"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound              = "NOT_FOUND"               // 资源/实体不存在
	ErrorCodeCapabilityUnavailable = "CAPABILITY_UNAVAILABLE"  // 可选能力不可用
	ErrorCodeInvalidInput          = "INVALID_INPUT"           // 输入无效
	ErrorCodeNotSupported          = "NOT_SUPPORTED"           // 操作不支持
)

// 模块名称常量
const (
	ModuleQuery   = "query"   // 查询理解模块
	ModuleRecall  = "recall"  // 检索/召回模块
	ModuleRank    = "rank"    // 排序模块
	ModuleProfile = "profile" // 个性化模块
	ModuleEval    = "eval"    // 评估模块
	ModuleStore   = "store"   // 存储模块
	ModuleVector  = "vector"  // 向量模块
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsCapabilityUnavailable 检查错误是否为 CAPABILITY_UNAVAILABLE。
// 调用方据此进入降级模式，而不是中止流程。
func IsCapabilityUnavailable(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeCapabilityUnavailable
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
