package types

// SectionType 表示简历章节类型
type SectionType string

const (
	// SectionNone 尚未进入任何章节（文本解析初始状态）
	SectionNone SectionType = ""
	// SectionContact 联系方式
	SectionContact SectionType = "CONTACT"
	// SectionObjective 求职目标/个人简介
	SectionObjective SectionType = "OBJECTIVE"
	// SectionSkills 技能
	SectionSkills SectionType = "SKILLS"
	// SectionCertificates 证书
	SectionCertificates SectionType = "CERTIFICATES"
	// SectionEducation 教育经历
	SectionEducation SectionType = "EDUCATION"
	// SectionExperience 工作经历
	SectionExperience SectionType = "EXPERIENCE"
)

// Contact 联系方式，所有字段可选，空字符串表示"未识别"
type Contact struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Phone    string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email    string `json:"email,omitempty" yaml:"email,omitempty"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty" yaml:"github,omitempty"`
}

// IsEmpty 所有联系方式字段均为空
func (c Contact) IsEmpty() bool {
	return c == Contact{}
}

// EducationEntry 一条教育经历
type EducationEntry struct {
	Institution string   `json:"institution" yaml:"institution"`
	Degree      string   `json:"degree" yaml:"degree"`
	Dates       string   `json:"dates" yaml:"dates"`
	Location    string   `json:"location" yaml:"location"`
	Details     []string `json:"details" yaml:"details"`
}

// HasIdentity 学校或学位至少有一个非空
func (e *EducationEntry) HasIdentity() bool {
	return e.Institution != "" || e.Degree != ""
}

// ExperienceEntry 一条工作经历
type ExperienceEntry struct {
	Company          string   `json:"company" yaml:"company"`
	Title            string   `json:"title" yaml:"title"`
	Dates            string   `json:"dates" yaml:"dates"`
	Responsibilities []string `json:"responsibilities" yaml:"responsibilities"`
}

// HasIdentity 公司或职位至少有一个非空
func (e *ExperienceEntry) HasIdentity() bool {
	return e.Company != "" || e.Title != ""
}

// ResumeRecord 简历的结构化表示。
// 字段顺序即序列化顺序；列表字段永远不为 nil，渲染器只需判断长度。
type ResumeRecord struct {
	Contact      Contact           `json:"contact" yaml:"contact"`
	Objective    string            `json:"objective" yaml:"objective"`
	Skills       []string          `json:"skills" yaml:"skills"`
	Certificates []string          `json:"certificates" yaml:"certificates"`
	Education    []EducationEntry  `json:"education" yaml:"education"`
	Experience   []ExperienceEntry `json:"experience" yaml:"experience"`
}

// NewResumeRecord 创建一个所有列表字段均为空切片的记录
func NewResumeRecord() *ResumeRecord {
	return &ResumeRecord{
		Skills:       []string{},
		Certificates: []string{},
		Education:    []EducationEntry{},
		Experience:   []ExperienceEntry{},
	}
}

// NewEducationEntry 创建一条空的教育经历
func NewEducationEntry() EducationEntry {
	return EducationEntry{Details: []string{}}
}

// NewExperienceEntry 创建一条空的工作经历
func NewExperienceEntry() ExperienceEntry {
	return ExperienceEntry{Responsibilities: []string{}}
}

// Normalize 将反序列化后可能为 nil 的列表字段补齐为空切片。
// 反序列化得到的记录必须经过这一步才能交给渲染器。
func (r *ResumeRecord) Normalize() *ResumeRecord {
	if r.Skills == nil {
		r.Skills = []string{}
	}
	if r.Certificates == nil {
		r.Certificates = []string{}
	}
	if r.Education == nil {
		r.Education = []EducationEntry{}
	}
	if r.Experience == nil {
		r.Experience = []ExperienceEntry{}
	}
	for i := range r.Education {
		if r.Education[i].Details == nil {
			r.Education[i].Details = []string{}
		}
	}
	for i := range r.Experience {
		if r.Experience[i].Responsibilities == nil {
			r.Experience[i].Responsibilities = []string{}
		}
	}
	return r
}

// Summary 简要统计，用于日志和接口返回
type Summary struct {
	Name            string `json:"name"`
	SkillCount      int    `json:"skill_count"`
	CertificateCnt  int    `json:"certificate_count"`
	EducationCount  int    `json:"education_count"`
	ExperienceCount int    `json:"experience_count"`
	HasObjective    bool   `json:"has_objective"`
}

// Summarize 生成记录摘要
func (r *ResumeRecord) Summarize() Summary {
	return Summary{
		Name:            r.Contact.Name,
		SkillCount:      len(r.Skills),
		CertificateCnt:  len(r.Certificates),
		EducationCount:  len(r.Education),
		ExperienceCount: len(r.Experience),
		HasObjective:    r.Objective != "",
	}
}

// Clone 深拷贝记录，返回的副本列表字段均非 nil
func (r *ResumeRecord) Clone() *ResumeRecord {
	if r == nil {
		return NewResumeRecord()
	}
	out := *r
	out.Skills = append([]string{}, r.Skills...)
	out.Certificates = append([]string{}, r.Certificates...)
	out.Education = make([]EducationEntry, len(r.Education))
	for i, e := range r.Education {
		e.Details = append([]string{}, e.Details...)
		out.Education[i] = e
	}
	out.Experience = make([]ExperienceEntry, len(r.Experience))
	for i, e := range r.Experience {
		e.Responsibilities = append([]string{}, e.Responsibilities...)
		out.Experience[i] = e
	}
	return &out
}
