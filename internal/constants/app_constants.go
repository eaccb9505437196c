package constants

import "time"

const (
	// Application-level constants
	AppName    = "resume-docx-go"
	AppVersion = "1.0.0"

	// 导出文件名
	DocumentFileSuffix = "_Resume"
	DocumentFallback   = "Resume"
	RecordFileSuffix   = "_resume"
	RecordFallback     = "resume"
	DocxExt            = ".docx"

	// 渲染占位符
	PlaceholderName    = "Your Name"
	PlaceholderCompany = "Company Name"
	PlaceholderTitle   = "Job Title"

	// 章节标题
	TitleObjective    = "Objective"
	TitleSkills       = "Skills and Qualifications"
	TitleCertificates = "Certificates"
	TitleEducation    = "Education and Training"
	TitleExperience   = "Career History"

	// 导入相关
	ExpectedTableCount      = 6
	DefaultContactScanLines = 10
	DefaultMaxUploadMB      = 10

	DefaultSessionTTL = 24 * time.Hour
)

// MIME 类型
const (
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEJSON = "application/json"
	MIMEYAML = "application/yaml"
	MIMEHTML = "text/html; charset=utf-8"
	MIMEText = "text/markdown; charset=utf-8"
)
