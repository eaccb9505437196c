package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// SessionModulePrefix 会话模块
	SessionModulePrefix = "session"

	// EntityRecord 简历记录实体
	EntityRecord = "record"

	// KeySessionRecord 会话当前持有的简历记录 (STRING, JSON)
	// 格式: app:session:record:{sessionID}
	KeySessionRecord = AppPrefix + ":" + SessionModulePrefix + ":" + EntityRecord + ":%s"
)
