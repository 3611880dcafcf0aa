package social_test

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/social"
)

func sampleJob() models.Job {
	return models.Job{
		Title:          "Senior Go Engineer",
		Company:        "Acme",
		Location:       "Berlin, Germany",
		Type:           models.JobTypeFullTime,
		Category:       models.CategoryBackend,
		Experience:     models.ExperienceSenior,
		Salary:         &models.Salary{Min: 70000, Max: 90000, Currency: "EUR", Period: models.SalaryYearly},
		Description:    "<p>We build <b>payments</b> infrastructure.</p><ul><li>Go</li></ul>",
		ApplicationURL: "https://acme.example/apply",
		Tags:           []string{"Go", "Postgres", "Kubernetes"},
		Slug:           "senior-go-engineer-at-acme",
	}
}

func TestGenerateLinkedIn(t *testing.T) {
	g := social.NewGenerator("https://jobs.example/")
	vars, err := g.Generate(sampleJob(), social.LinkedIn)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(vars) != len(social.DefaultCatalog().Styles) {
		t.Fatalf("got %d variations, want one per style", len(vars))
	}

	first := vars[0].Text
	for _, want := range []string{
		"🏆 Acme is hiring a Senior Go Engineer.",
		"📍 Berlin, Germany · 💼 Full Time · 70k-90k EUR/year",
		"You will design, build and run the services",
		"We build payments infrastructure.",
		"Tech stack: Go, Postgres, Kubernetes",
		"Apply now: https://jobs.example/jobs/senior-go-engineer-at-acme",
		"#backend #seniordev #Berlin #hiring #jobs",
	} {
		if !strings.Contains(first, want) {
			t.Errorf("variation 0 missing %q:\n%s", want, first)
		}
	}
	if strings.Contains(first, "<p>") {
		t.Error("summary contains HTML")
	}

	seen := map[string]bool{}
	for i, v := range vars {
		if v.Index != i || v.Platform != social.LinkedIn {
			t.Errorf("variation %d = %+v", i, v)
		}
		if seen[v.Text] {
			t.Errorf("variation %d repeats an earlier one", i)
		}
		seen[v.Text] = true
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := social.NewGenerator("")
	a, _ := g.Generate(sampleJob(), social.Twitter)
	b, _ := g.Generate(sampleJob(), social.Twitter)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("variation %d differs between runs", i)
		}
	}
	if !strings.Contains(a[0].Text, "https://acme.example/apply") {
		t.Errorf("without a site URL posts should link to the application: %s", a[0].Text)
	}
}

func TestGenerateTwitterFits(t *testing.T) {
	job := sampleJob()
	job.Title = strings.Repeat("Distinguished Principal Staff ", 6) + "Engineer"
	job.Tags = []string{"Go", "Rust", "Kubernetes", "Terraform", "Postgres", "Kafka"}

	vars, err := social.NewGenerator("https://jobs.example").Generate(job, social.Twitter)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, v := range vars {
		if n := utf8.RuneCountInString(v.Text); n > 280 {
			t.Errorf("variation %d is %d runes", v.Index, n)
		}
	}
}

func TestGenerateReddit(t *testing.T) {
	job := sampleJob()
	job.IsRemote = true
	job.Location = "Remote"
	job.Tags = nil

	vars, err := social.NewGenerator("").Generate(job, social.Reddit)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	text := vars[2].Text
	if !strings.HasPrefix(text, "[Hiring] Senior Go Engineer at Acme (Remote)") {
		t.Errorf("reddit post starts with %q", strings.SplitN(text, "\n", 2)[0])
	}
	if strings.Contains(text, "#") || strings.Contains(text, "Tech stack") {
		t.Errorf("reddit post has hashtags or an empty tech line:\n%s", text)
	}
	if strings.Contains(text, "🌍") {
		t.Error("reddit post should not carry emoji")
	}
}

func TestGenerateUnknownPlatform(t *testing.T) {
	_, err := social.NewGenerator("").Generate(sampleJob(), "myspace")
	if !errors.Is(err, social.ErrUnknownPlatform) {
		t.Errorf("err = %v, want ErrUnknownPlatform", err)
	}
}

func TestLoadCatalogRejectsEmpty(t *testing.T) {
	if _, err := social.LoadCatalog([]byte("styles: []\n")); err == nil {
		t.Error("expected an error for a catalog without styles")
	}
}

func TestStep(t *testing.T) {
	cases := []struct{ n, current, delta, want int }{
		{4, 0, 1, 1},
		{4, 3, 1, 0},
		{4, 0, -1, 3},
		{4, 1, -6, 3},
		{0, 2, 1, 0},
	}
	for _, tc := range cases {
		if got := social.Step(tc.n, tc.current, tc.delta); got != tc.want {
			t.Errorf("Step(%d, %d, %d) = %d, want %d", tc.n, tc.current, tc.delta, got, tc.want)
		}
	}
}

func TestRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		if i := social.Random(4, rng); i < 0 || i >= 4 {
			t.Fatalf("Random = %d", i)
		}
	}
	if social.Random(0, nil) != 0 {
		t.Error("Random(0) should be 0")
	}
}
