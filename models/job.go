package models

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// JobType is the employment type of a listing
type JobType string

// JobType constants
const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
	JobTypeFreelance  JobType = "freelance"
)

// Category is open-ended; these are the values the UI knows about
type Category string

// Category constants
const (
	CategoryEngineering Category = "engineering"
	CategoryDesign      Category = "design"
	CategoryMarketing   Category = "marketing"
	CategorySales       Category = "sales"
	CategoryProduct     Category = "product"
	CategoryData        Category = "data"
	CategoryOperations  Category = "operations"
	CategoryFinance     Category = "finance"
	CategoryHR          Category = "hr"
	CategoryFrontend    Category = "frontend"
	CategoryBackend     Category = "backend"
	CategoryFullstack   Category = "fullstack"
	CategoryMobile      Category = "mobile"
	CategoryDevOps      Category = "devops"
	CategoryAI          Category = "ai"
	CategoryOther       Category = "other"
)

// Experience is the seniority of a listing
type Experience string

// Experience constants (canonical values only)
const (
	ExperienceIntern    Experience = "intern"
	ExperienceJunior    Experience = "junior"
	ExperienceJuniorMid Experience = "junior-mid"
	ExperienceMid       Experience = "mid"
	ExperienceMidSenior Experience = "mid-senior"
	ExperienceSenior    Experience = "senior"
	ExperienceBetween   Experience = "between"
)

// SalaryPeriod is the unit a salary range is quoted in
type SalaryPeriod string

// SalaryPeriod constants
const (
	SalaryHourly  SalaryPeriod = "hourly"
	SalaryMonthly SalaryPeriod = "monthly"
	SalaryYearly  SalaryPeriod = "yearly"
)

// Salary is an optional pay range
type Salary struct {
	Min      int          `json:"min"`
	Max      int          `json:"max"`
	Currency string       `json:"currency"`
	Period   SalaryPeriod `json:"period"`
}

// Job is the read model for a listing
// @Description Job listing
type Job struct {
	ID             string     `json:"id" example:"6f1c2a9e-4b7d-4c55-9d38-0c1f5b3e2a10"`
	Title          string     `json:"title" example:"Senior Go Engineer"`
	Company        string     `json:"company" example:"Acme"`
	Location       string     `json:"location" example:"Berlin, Germany"`
	Type           JobType    `json:"type" example:"full-time"`
	Category       Category   `json:"category" example:"backend"`
	Experience     Experience `json:"experience" example:"senior"`
	Salary         *Salary    `json:"salary,omitempty"`
	Description    string     `json:"description"`
	Requirements   []string   `json:"requirements"`
	Benefits       []string   `json:"benefits"`
	IsRemote       bool       `json:"isRemote"`
	IsFeatured     bool       `json:"isFeatured"`
	IsActive       bool       `json:"isActive"`
	ApplicationURL string     `json:"applicationUrl" example:"https://acme.example/careers/42"`
	CompanyLogo    string     `json:"companyLogo,omitempty"`
	Tags           []string   `json:"tags"`
	Slug           string     `json:"slug" example:"senior-go-engineer-at-acme"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

var canonicalExperience = map[Experience]bool{
	ExperienceIntern:    true,
	ExperienceJunior:    true,
	ExperienceJuniorMid: true,
	ExperienceMid:       true,
	ExperienceMidSenior: true,
	ExperienceSenior:    true,
	ExperienceBetween:   true,
}

// NormalizeExperience repairs stored experience values. Legacy "executive"
// and "lead" become senior, anything unknown becomes mid.
func NormalizeExperience(raw string) Experience {
	e := Experience(raw)
	if canonicalExperience[e] {
		return e
	}
	switch raw {
	case "executive", "lead":
		return ExperienceSenior
	default:
		return ExperienceMid
	}
}

// IsCanonicalExperience reports whether raw is one of the seven stored values
func IsCanonicalExperience(raw string) bool {
	return canonicalExperience[Experience(raw)]
}

// NormalizeJobType normalizes various job type strings to standard values
func NormalizeJobType(raw string) JobType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "full-time", "full time", "fulltime", "full_time", "permanent":
		return JobTypeFullTime
	case "part-time", "part time", "parttime", "part_time":
		return JobTypePartTime
	case "contract", "contractor", "temporary", "temp":
		return JobTypeContract
	case "internship", "intern":
		return JobTypeInternship
	case "freelance", "freelancer":
		return JobTypeFreelance
	default:
		return JobTypeFullTime
	}
}

// IsValidJobType reports whether t is one of the five employment types
func IsValidJobType(t JobType) bool {
	switch t {
	case JobTypeFullTime, JobTypePartTime, JobTypeContract, JobTypeInternship, JobTypeFreelance:
		return true
	}
	return false
}

// IsValidSalaryPeriod reports whether p is hourly, monthly or yearly
func IsValidSalaryPeriod(p SalaryPeriod) bool {
	return p == SalaryHourly || p == SalaryMonthly || p == SalaryYearly
}

// Slugify lower-cases s, folds accents and joins alphanumeric runs with "-"
func Slugify(s string) string {
	// transformers carry state, so the chain is built per call
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, s)
	if err != nil {
		folded = s
	}

	var sb strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return sb.String()
}

// GenerateSlug derives the public identifier of a job
func GenerateSlug(title, company string) string {
	return Slugify(title) + "-at-" + Slugify(company)
}

// PrimaryLocation returns the first comma-separated segment of a location
func PrimaryLocation(location string) string {
	first, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(first)
}
