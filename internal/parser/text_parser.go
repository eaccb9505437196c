package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resume-docx-go/internal/constants"
	"resume-docx-go/internal/types"
)

// DateRuleMode 工作经历中"日期行"的判定规则
type DateRuleMode string

const (
	// DateRuleLiteral 行内含四位年份且含连字符或 en-dash 即视为日期行
	DateRuleLiteral DateRuleMode = "literal"
	// DateRuleStrictRange 要求形如 "2019 - 2022" / "2019 – Present" 的完整区间
	DateRuleStrictRange DateRuleMode = "strict"
)

// ParseDateRuleMode 解析配置中的规则名，未知值回退为 DateRuleLiteral
func ParseDateRuleMode(s string) DateRuleMode {
	if strings.EqualFold(strings.TrimSpace(s), string(DateRuleStrictRange)) {
		return DateRuleStrictRange
	}
	return DateRuleLiteral
}

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+`)
	phonePattern    = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	locationPattern = regexp.MustCompile(`[A-Z][a-z]+,\s*[A-Z]{2}|[A-Z][a-z]+,\s*[A-Z][a-z]+`)
	linkedInPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[A-Za-z0-9_-]+/?`)
	gitHubPattern   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9_-]+/?`)

	yearPattern        = regexp.MustCompile(`\d{4}`)
	strictRangePattern = regexp.MustCompile(`(?i)\d{4}\s*[-–]\s*(?:\d{4}|present|current|now)`)
	bulletPrefix       = regexp.MustCompile(`^[•\-]\s*`)
	skillDelimiters    = regexp.MustCompile(`[•,|]`)
)

// sectionAliases 章节标题别名，按检测顺序排列
var sectionAliases = []struct {
	section types.SectionType
	aliases []string
}{
	{types.SectionObjective, []string{"objective", "summary", "professional summary"}},
	{types.SectionSkills, []string{"skills", "technical skills", "core competencies"}},
	{types.SectionCertificates, []string{"certificates", "certifications", "licenses"}},
	{types.SectionEducation, []string{"education", "education and training"}},
	{types.SectionExperience, []string{"experience", "work experience", "career history", "employment history"}},
}

// longLineRunes 超过该长度的行被视为新条目的标题（学校名/公司名），而不是续行
const longLineRunes = 20

// TextParser 基于启发式规则的纯文本简历解析器
type TextParser struct {
	contactScanLines int
	dateRule         DateRuleMode
}

// TextParserOption 文本解析器的配置选项
type TextParserOption func(*TextParser)

// WithContactScanLines 设置联系方式的扫描行数
func WithContactScanLines(n int) TextParserOption {
	return func(p *TextParser) {
		if n > 0 {
			p.contactScanLines = n
		}
	}
}

// WithDateRule 设置工作经历日期行的判定规则
func WithDateRule(mode DateRuleMode) TextParserOption {
	return func(p *TextParser) {
		p.dateRule = mode
	}
}

// NewTextParser 创建文本解析器
func NewTextParser(options ...TextParserOption) *TextParser {
	p := &TextParser{
		contactScanLines: constants.DefaultContactScanLines,
		dateRule:         DateRuleLiteral,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

var defaultTextParser = NewTextParser()

// ParseText 使用默认配置解析纯文本
func ParseText(text string) *types.ResumeRecord {
	return defaultTextParser.Parse(text)
}

// Parse 将逐行排布的简历文本解析为结构化记录。
// 该函数不会失败：无法识别的内容被忽略，最差返回一个几乎为空的记录。
func (p *TextParser) Parse(text string) *types.ResumeRecord {
	rec := types.NewResumeRecord()

	lines := splitLines(text)
	if len(lines) == 0 {
		return rec
	}

	rec.Contact.Name = lines[0]
	p.scanContact(rec, lines)

	state := scanState{section: types.SectionNone, sectionStart: -1}
	for i, line := range lines {
		state = p.step(rec, state, lines, i, line)
	}
	state.flush(rec)

	return rec
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// scanContact 在前若干行中识别邮箱、电话、所在地和个人主页，后出现的覆盖先出现的
func (p *TextParser) scanContact(rec *types.ResumeRecord, lines []string) {
	n := min(p.contactScanLines, len(lines))
	for _, line := range lines[:n] {
		matched := false
		if m := emailPattern.FindString(line); m != "" {
			rec.Contact.Email = m
			matched = true
		}
		if m := phonePattern.FindString(line); m != "" {
			rec.Contact.Phone = m
			matched = true
		}
		if !matched && !strings.Contains(line, "@") {
			if m := locationPattern.FindString(line); m != "" {
				rec.Contact.Location = m
			}
		}
		if m := linkedInPattern.FindString(line); m != "" {
			rec.Contact.LinkedIn = m
		}
		if m := gitHubPattern.FindString(line); m != "" {
			rec.Contact.GitHub = m
		}
	}
}

// scanState 顺序扫描的状态：当前章节和该章节下尚未落盘的条目。
// 同一时刻最多只有一个条目处于打开状态。
type scanState struct {
	section      types.SectionType
	sectionStart int
	edu          *types.EducationEntry
	exp          *types.ExperienceEntry
}

// flush 将打开的条目按身份规则追加到记录中
func (s scanState) flush(rec *types.ResumeRecord) scanState {
	if s.edu != nil && s.edu.Institution != "" {
		rec.Education = append(rec.Education, *s.edu)
	}
	if s.exp != nil && s.exp.Company != "" {
		rec.Experience = append(rec.Experience, *s.exp)
	}
	s.edu, s.exp = nil, nil
	return s
}

func (p *TextParser) step(rec *types.ResumeRecord, s scanState, lines []string, i int, line string) scanState {
	if section, ok := detectSection(line); ok {
		// 切换章节时丢弃打开的条目
		return scanState{section: section, sectionStart: i}
	}

	switch s.section {
	case types.SectionObjective:
		if rec.Objective == "" {
			rec.Objective = line
		} else {
			rec.Objective += " " + line
		}
	case types.SectionSkills:
		for _, piece := range skillDelimiters.Split(line, -1) {
			if piece = strings.TrimSpace(piece); piece != "" {
				rec.Skills = append(rec.Skills, piece)
			}
		}
	case types.SectionCertificates:
		rec.Certificates = append(rec.Certificates, stripBullet(line))
	case types.SectionEducation:
		s = stepEducation(rec, s, line)
	case types.SectionExperience:
		prev, prevInSection := "", false
		if i > 0 {
			prev = lines[i-1]
			prevInSection = i-1 > s.sectionStart
		}
		s = p.stepExperience(rec, s, line, prev, prevInSection)
	}
	return s
}

func detectSection(line string) (types.SectionType, bool) {
	lower := strings.ToLower(line)
	for _, entry := range sectionAliases {
		for _, alias := range entry.aliases {
			if strings.HasPrefix(lower, alias) {
				return entry.section, true
			}
		}
	}
	return types.SectionNone, false
}

func stepEducation(rec *types.ResumeRecord, s scanState, line string) scanState {
	if yearPattern.MatchString(line) || (s.edu != nil && utf8.RuneCountInString(line) > longLineRunes) {
		s = s.flush(rec)
		entry := types.NewEducationEntry()
		entry.Institution = line
		s.edu = &entry
		return s
	}
	if s.edu == nil {
		return s
	}
	// 含年份的行总是开启新条目，Dates 只能由表格解析或记录导入填充
	if s.edu.Degree == "" {
		s.edu.Degree = line
	} else {
		s.edu.Details = append(s.edu.Details, line)
	}
	return s
}

func (p *TextParser) stepExperience(rec *types.ResumeRecord, s scanState, line, prev string, prevInSection bool) scanState {
	if p.isDateMarker(line) {
		open := s.exp
		if open != nil && open.Dates == "" && prevInSection && (prev == open.Company || prev == open.Title) {
			open.Dates = line
			return s
		}
		s = s.flush(rec)
		entry := types.NewExperienceEntry()
		entry.Dates = line
		if prevInSection {
			entry.Company = prev
		}
		s.exp = &entry
		return s
	}

	if bulletPrefix.MatchString(line) {
		if s.exp != nil {
			s.exp.Responsibilities = append(s.exp.Responsibilities, stripBullet(line))
		}
		return s
	}

	switch {
	case s.exp != nil && s.exp.Company == "":
		s.exp.Company = line
	case s.exp != nil && s.exp.Title == "":
		s.exp.Title = line
	case s.exp == nil || utf8.RuneCountInString(line) > longLineRunes:
		s = s.flush(rec)
		entry := types.NewExperienceEntry()
		entry.Company = line
		s.exp = &entry
	}
	return s
}

func (p *TextParser) isDateMarker(line string) bool {
	if p.dateRule == DateRuleStrictRange {
		return strictRangePattern.MatchString(line)
	}
	if !yearPattern.MatchString(line) {
		return false
	}
	return strings.Contains(line, "–") || strings.Contains(line, "-")
}

func stripBullet(line string) string {
	return bulletPrefix.ReplaceAllString(line, "")
}
