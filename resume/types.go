package resume

import (
	"strings"
	"time"
)

// Document is a resume plus its template selection.
type Document struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	LastUpdated time.Time  `json:"lastUpdated,omitempty"`
	Template    TemplateID `json:"template,omitempty"`
	Content     Content    `json:"content"`
}

// Content is the structured resume body.
type Content struct {
	PersonalInfo   PersonalInfo        `json:"personalInfo"`
	Summary        string              `json:"summary"`
	Experience     []ExperienceItem    `json:"experience"`
	Education      []EducationItem     `json:"education"`
	Skills         []string            `json:"skills"`
	Certifications []CertificationItem `json:"certifications"`
	Languages      []LanguageItem      `json:"languages"`
	Projects       []ProjectItem       `json:"projects"`
}

// PersonalInfo is the header block of a resume.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	JobTitle string `json:"jobTitle"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

type ExperienceItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	Description string   `json:"description"`
	Highlights  []string `json:"highlights"`
}

type EducationItem struct {
	ID          string `json:"id"`
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}

type CertificationItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
	URL    string `json:"url,omitempty"`
}

// Proficiency is a spoken language level.
type Proficiency string

const (
	ProficiencyBeginner     Proficiency = "Beginner"
	ProficiencyIntermediate Proficiency = "Intermediate"
	ProficiencyAdvanced     Proficiency = "Advanced"
	ProficiencyFluent       Proficiency = "Fluent"
	ProficiencyNative       Proficiency = "Native"
)

type LanguageItem struct {
	ID          string      `json:"id"`
	Language    string      `json:"language"`
	Proficiency Proficiency `json:"proficiency"`
}

type ProjectItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url,omitempty"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
}

// Contacts returns the non-empty contact fields in display order.
func (p PersonalInfo) Contacts() []string {
	return nonEmpty(p.Email, p.Phone, p.Location)
}

// WebPresence returns the non-empty LinkedIn and website fields.
func (p PersonalInfo) WebPresence() []string {
	return nonEmpty(p.LinkedIn, p.Website)
}

// HasSummary reports whether the summary has visible text.
func (c Content) HasSummary() bool {
	return strings.TrimSpace(c.Summary) != ""
}

// SkillList returns the skills with blank entries removed.
func (c Content) SkillList() []string {
	return nonEmpty(c.Skills...)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
