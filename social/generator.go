// Package social builds promotional post text for a job. Output is fully
// determined by the job, the platform and the variation index.
package social

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/utils"
)

// Platform is a social network
type Platform string

// Platform constants
const (
	LinkedIn Platform = "linkedin"
	Twitter  Platform = "twitter"
	Reddit   Platform = "reddit"
)

// ErrUnknownPlatform is returned for a platform missing from the catalog
var ErrUnknownPlatform = errors.New("unknown platform")

// Variation is one generated post
// @Description Generated social post
type Variation struct {
	Index    int      `json:"index" example:"0"`
	Style    string   `json:"style" example:"professional"`
	Platform Platform `json:"platform" example:"linkedin"`
	Text     string   `json:"text"`
}

// Generator renders posts from a catalog
type Generator struct {
	catalog *Catalog
	siteURL string
}

// NewGenerator uses the embedded catalog. Posts link to siteURL/jobs/{slug},
// or to the application URL when siteURL is empty.
func NewGenerator(siteURL string) *Generator {
	return NewGeneratorWith(DefaultCatalog(), siteURL)
}

// NewGeneratorWith uses a custom catalog
func NewGeneratorWith(c *Catalog, siteURL string) *Generator {
	return &Generator{catalog: c, siteURL: strings.TrimRight(siteURL, "/")}
}

// Generate builds one variation per style
func (g *Generator) Generate(job models.Job, platform Platform) ([]Variation, error) {
	rules, ok := g.catalog.Platforms[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}

	out := make([]Variation, len(g.catalog.Styles))
	for i, style := range g.catalog.Styles {
		p := g.parts(job, i, style, rules)
		var text string
		switch platform {
		case Twitter:
			text = p.compact(rules.MaxLength)
		case Reddit:
			text = p.longForm(redditTitle(job))
		default:
			text = p.longForm("")
		}
		out[i] = Variation{
			Index:    i,
			Style:    style.Name,
			Platform: platform,
			Text:     utils.Truncate(text, rules.MaxLength),
		}
	}
	return out, nil
}

// Platforms lists the platforms the catalog supports
func (g *Generator) Platforms() []Platform {
	out := make([]Platform, 0, len(g.catalog.Platforms))
	for _, p := range []Platform{LinkedIn, Twitter, Reddit} {
		if _, ok := g.catalog.Platforms[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

type postParts struct {
	headline    string
	details     string
	description string
	summary     string
	tech        string
	cta         string
	hashtags    string
}

func (g *Generator) parts(job models.Job, i int, style Style, rules PlatformRules) postParts {
	c := g.catalog
	p := postParts{
		headline:    fill(style.Intro, job),
		description: c.description(string(job.Category), style.Name),
		tech:        techLine(c.TechPrefix, job.Tags, c.MaxTechTags),
		cta:         pick(c.CTAs, i) + ": " + g.link(job),
	}

	where := job.Location
	if job.IsRemote {
		where = strings.TrimSpace("Remote " + parenthesise(job.Location))
	}
	details := []string{where, typeLabel(job.Type)}
	if salary := formatSalary(job.Salary); salary != "" {
		details = append(details, salary)
	}

	if rules.Emoji {
		locKey := "onsite"
		if job.IsRemote {
			locKey = "remote"
		}
		p.headline = prefix(pick(c.Emoji.Experience[string(job.Experience)], i), p.headline)
		details[0] = prefix(pick(c.Emoji.Location[locKey], i), details[0])
		details[1] = prefix(pick(c.Emoji.Type[string(job.Type)], i), details[1])
	}
	p.details = strings.Join(nonEmpty(details), " · ")

	if rules.SummaryLength > 0 {
		p.summary = summarise(job.Description, rules.SummaryLength)
	}
	if rules.Hashtags {
		p.hashtags = strings.Join(hashtags(c.Hashtags, job), " ")
	}
	return p
}

func (g *Generator) link(job models.Job) string {
	if g.siteURL == "" || job.Slug == "" {
		return job.ApplicationURL
	}
	return g.siteURL + "/jobs/" + job.Slug
}

// longForm lays the parts out as paragraphs
func (p postParts) longForm(title string) string {
	blocks := []string{title, p.headline, p.details, p.description, p.summary, p.tech, p.cta, p.hashtags}
	return strings.Join(nonEmpty(blocks), "\n\n")
}

// compact lays the parts out line by line, dropping the least important
// lines until the post fits in max runes
func (p postParts) compact(max int) string {
	lines := []*string{&p.headline, &p.description, &p.details, &p.tech, &p.cta, &p.hashtags}
	render := func() string {
		var out []string
		for _, l := range lines {
			out = append(out, *l)
		}
		return strings.Join(nonEmpty(out), "\n")
	}

	for _, drop := range []*string{&p.tech, &p.description, &p.details} {
		if utf8.RuneCountInString(render()) <= max {
			break
		}
		*drop = ""
	}
	return render()
}

func redditTitle(job models.Job) string {
	title := fmt.Sprintf("[Hiring] %s at %s", job.Title, job.Company)
	switch {
	case job.IsRemote:
		title += " (Remote)"
	case job.Location != "":
		title += " (" + job.Location + ")"
	}
	return title
}

func fill(tmpl string, job models.Job) string {
	return strings.NewReplacer(
		"{title}", job.Title,
		"{company}", job.Company,
		"{location}", job.Location,
		"{type}", typeLabel(job.Type),
		"{experience}", label(string(job.Experience)),
	).Replace(tmpl)
}

func techLine(prefix string, tags []string, max int) string {
	if len(tags) == 0 {
		return ""
	}
	if max > 0 && len(tags) > max {
		tags = tags[:max]
	}
	return prefix + " " + strings.Join(tags, ", ")
}

func summarise(html string, max int) string {
	text := strings.Join(strings.Fields(utils.PlainText(html)), " ")
	return utils.Truncate(text, max)
}

// hashtags builds category, experience, location and fixed tags, deduplicated
func hashtags(set HashtagSet, job models.Job) []string {
	var tags []string
	tags = append(tags, set.Category[string(job.Category)])
	tags = append(tags, set.Experience[string(job.Experience)])
	if job.IsRemote {
		tags = append(tags, set.Remote)
	} else if loc := models.PrimaryLocation(job.Location); loc != "" {
		tags = append(tags, "#"+camel(loc))
	}
	tags = append(tags, set.Fixed...)

	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(tag)
		if len(tag) < 2 || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

func formatSalary(s *models.Salary) string {
	if s == nil || (s.Min == 0 && s.Max == 0) {
		return ""
	}
	var amount string
	switch {
	case s.Min > 0 && s.Max > 0 && s.Min != s.Max:
		amount = shortAmount(s.Min) + "-" + shortAmount(s.Max)
	case s.Max > 0:
		amount = "up to " + shortAmount(s.Max)
	default:
		amount = "from " + shortAmount(s.Min)
	}
	if s.Currency != "" {
		amount += " " + s.Currency
	}
	switch s.Period {
	case models.SalaryHourly:
		amount += "/hour"
	case models.SalaryMonthly:
		amount += "/month"
	case models.SalaryYearly:
		amount += "/year"
	}
	return amount
}

func shortAmount(n int) string {
	if n >= 1000 && n%1000 == 0 {
		return strconv.Itoa(n/1000) + "k"
	}
	return strconv.Itoa(n)
}

func typeLabel(t models.JobType) string {
	return label(string(t))
}

// label turns "full-time" into "Full Time"
func label(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "-", " "))
}

// camel turns "san francisco" into "SanFrancisco"
func camel(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, cases.Title(language.English).String(s))
}

func parenthesise(s string) string {
	if s == "" || strings.EqualFold(s, "remote") {
		return ""
	}
	return "(" + s + ")"
}

func prefix(emoji, s string) string {
	if emoji == "" || s == "" {
		return s
	}
	return emoji + " " + s
}

func nonEmpty(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
