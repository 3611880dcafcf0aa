package sources

import (
	"regexp"
	"strings"

	"github.com/jobboard/backend/models"
)

// categoryKeywords is checked in order; the first category with a hit wins
var categoryKeywords = []struct {
	category models.Category
	words    []string
}{
	{models.CategoryAI, []string{"machine learning", "ml engineer", "artificial intelligence", "llm", "deep learning", "nlp", "computer vision"}},
	{models.CategoryData, []string{"data engineer", "data scientist", "data analyst", "analytics", "etl", "bi developer"}},
	{models.CategoryDevOps, []string{"devops", "sre", "site reliability", "platform engineer", "infrastructure", "kubernetes", "cloud engineer"}},
	{models.CategoryMobile, []string{"ios", "android", "mobile", "flutter", "react native", "swift", "kotlin"}},
	{models.CategoryFullstack, []string{"full stack", "fullstack", "full-stack"}},
	{models.CategoryFrontend, []string{"frontend", "front-end", "front end", "react", "vue", "angular", "ui engineer"}},
	{models.CategoryBackend, []string{"backend", "back-end", "back end", "golang", "java", "python", "node", "api", "ruby", "php", ".net"}},
	{models.CategoryDesign, []string{"designer", "ux", "ui/ux", "product design", "figma"}},
	{models.CategoryProduct, []string{"product manager", "product owner"}},
	{models.CategoryMarketing, []string{"marketing", "seo", "content", "growth"}},
	{models.CategorySales, []string{"sales", "account executive", "business development"}},
	{models.CategoryFinance, []string{"finance", "accountant", "controller"}},
	{models.CategoryHR, []string{"recruiter", "talent", "people partner", " hr "}},
}

var engineeringWords = []string{"engineer", "developer", "programmer"}

// InferCategory guesses a category from the title, then tags, then the
// description. A generic engineering title only wins when nothing more
// specific matched; CategoryOther when nothing matches at all.
func InferCategory(title, description string, tags []string) models.Category {
	for _, text := range []string{title, strings.Join(tags, " "), description} {
		text = " " + strings.ToLower(text) + " "
		for _, c := range categoryKeywords {
			for _, w := range c.words {
				if strings.Contains(text, w) {
					return c.category
				}
			}
		}
	}
	lower := strings.ToLower(title)
	for _, w := range engineeringWords {
		if strings.Contains(lower, w) {
			return models.CategoryEngineering
		}
	}
	return models.CategoryOther
}

var (
	seniorRe = regexp.MustCompile(`\b(senior|sr\.?|lead|principal|staff|head of|architect)\b`)
	juniorRe = regexp.MustCompile(`\b(junior|jr\.?|entry[\s-]?level|graduate|new[\s-]?grad)\b`)
	internRe = regexp.MustCompile(`\b(intern|internship|trainee|apprentice)\b`)
	yearsRe  = regexp.MustCompile(`(\d+)\+?\s*(?:-\s*\d+\s*)?years?`)
)

// InferExperience guesses the seniority from the title, then from a
// "N years" mention in the description
func InferExperience(title, description string) models.Experience {
	t := strings.ToLower(title)
	switch {
	case internRe.MatchString(t):
		return models.ExperienceIntern
	case juniorRe.MatchString(t):
		return models.ExperienceJunior
	case seniorRe.MatchString(t):
		return models.ExperienceSenior
	}

	if m := yearsRe.FindStringSubmatch(strings.ToLower(description)); m != nil {
		switch m[1] {
		case "0", "1":
			return models.ExperienceJunior
		case "2":
			return models.ExperienceJuniorMid
		case "3", "4":
			return models.ExperienceMid
		case "5", "6":
			return models.ExperienceMidSenior
		default:
			return models.ExperienceSenior
		}
	}
	return models.ExperienceMid
}

var remoteWords = []string{"remote", "anywhere", "worldwide", "work from home", "wfh", "distributed"}

// IsRemote reports whether the title or location advertises remote work
func IsRemote(title, location string) bool {
	text := strings.ToLower(title + " " + location)
	for _, w := range remoteWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// knownTech maps lower-case search terms to display tags
var knownTech = []struct{ term, tag string }{
	{"golang", "Go"}, {" go ", "Go"}, {"python", "Python"}, {"java ", "Java"},
	{"javascript", "JavaScript"}, {"typescript", "TypeScript"}, {"react", "React"},
	{"vue", "Vue"}, {"angular", "Angular"}, {"node", "Node.js"}, {"ruby", "Ruby"},
	{"rails", "Rails"}, {"php", "PHP"}, {"rust", "Rust"}, {"kotlin", "Kotlin"},
	{"swift", "Swift"}, {"c#", "C#"}, {".net", ".NET"}, {"scala", "Scala"},
	{"postgres", "PostgreSQL"}, {"mysql", "MySQL"}, {"mongodb", "MongoDB"},
	{"redis", "Redis"}, {"kafka", "Kafka"}, {"docker", "Docker"},
	{"kubernetes", "Kubernetes"}, {"terraform", "Terraform"}, {"aws", "AWS"},
	{"gcp", "GCP"}, {"azure", "Azure"}, {"graphql", "GraphQL"}, {"sql", "SQL"},
}

const maxExtractedTags = 8

// ExtractTags finds well-known technologies in free text
func ExtractTags(text string) []string {
	text = " " + strings.ToLower(stripPunct.ReplaceAllString(text, " ")) + " "
	seen := make(map[string]bool)
	var tags []string
	for _, k := range knownTech {
		if seen[k.tag] || !strings.Contains(text, k.term) {
			continue
		}
		seen[k.tag] = true
		tags = append(tags, k.tag)
		if len(tags) == maxExtractedTags {
			break
		}
	}
	return tags
}

// keeps the characters that appear in tech names
var stripPunct = regexp.MustCompile(`[^\p{L}\p{N}#+.\s]`)
