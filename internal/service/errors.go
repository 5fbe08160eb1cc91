package service

import "errors"

// 错误分级：
//   - ErrMissingUser / ErrFormatNotFound 属于硬性失败，调用立即终止，绝不写库
//   - 批量写失败在 SyncService 内部逐条重试并吞掉，只记日志
//   - 可选列缺失 / 指标解析歧义一律静默降级，不对外抛错
var (
	// ErrMissingUser owner 归属缺失（校验错误）
	ErrMissingUser = errors.New("用户 ID 缺失，拒绝执行")

	// ErrFormatNotFound 导出模板未注册（配置错误）
	ErrFormatNotFound = errors.New("导出模板未注册")
)
