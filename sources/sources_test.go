package sources_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jobboard/backend/config"
	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/sources"
)

func serve(t *testing.T, check func(r *http.Request), status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemotive(t *testing.T) {
	srv := serve(t, func(r *http.Request) {
		if r.URL.Query().Get("search") != "golang" {
			t.Errorf("search = %q", r.URL.Query().Get("search"))
		}
	}, http.StatusOK, `{"jobs":[{
		"id": 1834,
		"url": "https://remotive.com/remote-jobs/software-dev/go-1834",
		"title": "Senior Backend Engineer",
		"company_name": "Acme",
		"company_logo": "https://remotive.com/logo.png",
		"category": "Software Development",
		"tags": ["go", "postgres"],
		"job_type": "full_time",
		"publication_date": "2024-03-01T10:00:00",
		"candidate_required_location": "Europe",
		"salary": "$80k - $100k",
		"description": "<p>Build APIs</p>"
	}]}`)

	got, err := sources.NewRemotive(srv.URL, srv.Client()).Search(context.Background(), "golang")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d jobs", len(got))
	}
	j := got[0]
	if j.ID != "remotive-1834" || j.Source != sources.Remotive || !j.IsRemote {
		t.Errorf("job = %+v", j)
	}
	if j.Type != models.JobTypeFullTime || j.Category != models.CategoryBackend || j.Experience != models.ExperienceSenior {
		t.Errorf("type/category/experience = %s/%s/%s", j.Type, j.Category, j.Experience)
	}
	if j.Salary == nil || j.Salary.Min != 80000 || j.Salary.Max != 100000 || j.Salary.Currency != "USD" {
		t.Errorf("salary = %+v", j.Salary)
	}
	if j.CreatedAt.Year() != 2024 || j.OriginalURL != j.ApplicationURL {
		t.Errorf("createdAt %v originalUrl %q", j.CreatedAt, j.OriginalURL)
	}
	if j.Requirements == nil || j.Benefits == nil {
		t.Error("list fields must be non-nil")
	}
}

func TestJSearch(t *testing.T) {
	srv := serve(t, func(r *http.Request) {
		if r.Header.Get("X-RapidAPI-Key") != "secret" {
			t.Errorf("missing api key header")
		}
	}, http.StatusOK, `{"data":[{
		"job_id": "abc==",
		"job_title": "Junior React Developer",
		"employer_name": "Beta",
		"job_city": "Austin",
		"job_state": "TX",
		"job_country": "US",
		"job_employment_type": "FULLTIME",
		"job_description": "Join us.\n\nYou will build UIs & more.",
		"job_is_remote": false,
		"job_apply_link": "https://beta.example/apply",
		"job_google_link": "https://google.example/job",
		"job_posted_at_datetime_utc": "2024-02-10T08:00:00.000Z",
		"job_min_salary": 25,
		"job_max_salary": 35,
		"job_salary_currency": "usd",
		"job_salary_period": "HOUR",
		"job_highlights": {"Qualifications": ["React"], "Benefits": ["Health"]}
	}]}`)

	got, err := sources.NewJSearch("secret", srv.URL, srv.Client()).Search(context.Background(), "react")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	j := got[0]
	if j.Location != "Austin, TX, US" || j.Type != models.JobTypeFullTime || j.Experience != models.ExperienceJunior {
		t.Errorf("job = %+v", j)
	}
	if j.Description != "<p>Join us.</p><p>You will build UIs &amp; more.</p>" {
		t.Errorf("description = %q", j.Description)
	}
	if j.Salary == nil || j.Salary.Period != models.SalaryHourly || j.Salary.Currency != "USD" {
		t.Errorf("salary = %+v", j.Salary)
	}
	if len(j.Requirements) != 1 || len(j.Benefits) != 1 || j.OriginalURL != "https://google.example/job" {
		t.Errorf("highlights = %v %v %q", j.Requirements, j.Benefits, j.OriginalURL)
	}

	if _, err := sources.NewJSearch("", srv.URL, srv.Client()).Search(context.Background(), "x"); !errors.Is(err, sources.ErrNotConfigured) {
		t.Errorf("without key err = %v", err)
	}
}

func TestAdzunaStopsOnShortPage(t *testing.T) {
	calls := 0
	srv := serve(t, func(r *http.Request) {
		calls++
		if r.URL.Path != "/us/search/1" {
			t.Errorf("path = %s", r.URL.Path)
		}
	}, http.StatusOK, `{"count":1,"results":[{
		"id": "42",
		"title": "<strong>Go</strong> Developer",
		"description": "Work on <strong>Go</strong> services",
		"company": {"display_name": "Gamma"},
		"location": {"display_name": "New York"},
		"category": {"tag": "it-jobs"},
		"salary_min": 120000,
		"salary_max": 150000,
		"redirect_url": "https://adzuna.example/42",
		"created": "2024-01-05T12:00:00Z",
		"contract_time": "part_time"
	}]}`)

	got, err := sources.NewAdzuna("id", "key", "us", srv.URL, srv.Client()).Search(context.Background(), "go")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	j := got[0]
	if j.Title != "Go Developer" || j.Type != models.JobTypePartTime || j.Salary.Currency != "USD" {
		t.Errorf("job = %+v", j)
	}
	if len(j.Tags) == 0 || j.Tags[0] != "Go" {
		t.Errorf("tags = %v", j.Tags)
	}
}

func TestStackOverflowFeed(t *testing.T) {
	srv := serve(t, nil, http.StatusOK, `<?xml version="1.0"?>
<rss><channel><item>
  <guid>https://stackoverflow.com/jobs/123</guid>
  <link>https://stackoverflow.com/jobs/123/go-engineer</link>
  <title>Go Engineer at Delta (Remote)</title>
  <category>go</category>
  <category>kubernetes</category>
  <description>&lt;p&gt;Ship it&lt;/p&gt;</description>
  <pubDate>Mon, 04 Mar 2024 10:00:00 Z</pubDate>
</item></channel></rss>`)

	got, err := sources.NewStackOverflow(srv.URL, srv.Client()).Search(context.Background(), "go")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	j := got[0]
	if j.ID != "stackoverflow-123" || j.Title != "Go Engineer" || j.Company != "Delta" || j.Location != "Remote" || !j.IsRemote {
		t.Errorf("job = %+v", j)
	}
	if j.Description != "<p>Ship it</p>" || len(j.Tags) != 2 {
		t.Errorf("description %q tags %v", j.Description, j.Tags)
	}
}

func TestStackOverflowAtomFeed(t *testing.T) {
	srv := serve(t, nil, http.StatusOK, `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>jobs</title>
  <entry>
    <id>https://stackoverflow.com/jobs/456</id>
    <title>Rust Developer at Echo</title>
    <link href="https://stackoverflow.com/jobs/456/rust-developer"/>
    <author><name>Echo Labs</name></author>
    <updated>2024-03-04T10:00:00Z</updated>
  </entry>
</feed>`)

	got, err := sources.NewStackOverflow(srv.URL, srv.Client()).Search(context.Background(), "rust")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d jobs", len(got))
	}
	j := got[0]
	if j.ID != "stackoverflow-456" || j.Title != "Rust Developer" || j.Company != "Echo Labs" {
		t.Errorf("job = %+v", j)
	}
	if j.ApplicationURL != "https://stackoverflow.com/jobs/456/rust-developer" {
		t.Errorf("url = %q", j.ApplicationURL)
	}
	if j.CreatedAt.Year() != 2024 {
		t.Errorf("created = %v", j.CreatedAt)
	}
}

func TestStackOverflowMalformedFeed(t *testing.T) {
	srv := serve(t, nil, http.StatusOK, `this is not a feed`)

	got, err := sources.NewStackOverflow(srv.URL, srv.Client()).Search(context.Background(), "go")
	if err == nil {
		t.Errorf("expected error, got %v", got)
	}
}

func TestGitHubUsesHowToApplyLink(t *testing.T) {
	srv := serve(t, nil, http.StatusOK, `[{
		"id": "f00",
		"type": "Full Time",
		"url": "https://jobs.github.com/positions/f00",
		"created_at": "Mon Mar 01 10:00:00 UTC 2021",
		"company": "Epsilon",
		"location": "Remote",
		"title": "Platform Engineer",
		"description": "<p>Kubernetes and Terraform</p>",
		"how_to_apply": "<p>Apply <a href=\"https://epsilon.example/jobs\">here</a></p>"
	}]`)

	got, err := sources.NewGitHubJobs(srv.URL, srv.Client()).Search(context.Background(), "platform")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	j := got[0]
	if j.ApplicationURL != "https://epsilon.example/jobs" || j.OriginalURL != "https://jobs.github.com/positions/f00" {
		t.Errorf("urls = %q %q", j.ApplicationURL, j.OriginalURL)
	}
	if j.Category != models.CategoryDevOps || j.CreatedAt.Year() != 2021 {
		t.Errorf("category %s createdAt %v", j.Category, j.CreatedAt)
	}
}

func TestSourceHTTPError(t *testing.T) {
	srv := serve(t, nil, http.StatusGone, "gone")
	_, err := sources.NewStartupJobs(srv.URL, srv.Client()).Search(context.Background(), "x")
	if err == nil {
		t.Fatal("expected an error for HTTP 410")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{RemotiveURL: "http://r", GithubJobsURL: "http://g", StackOverflowJobsURL: "http://s", StartupJobsURL: "http://st"}
	got := sources.NewFromConfig(cfg, http.DefaultClient)
	if len(got) != 4 {
		t.Errorf("got %d sources without credentials, want 4", len(got))
	}
	if _, ok := got[sources.JSearch]; ok {
		t.Error("jsearch enabled without a key")
	}

	cfg.RapidAPIKey = "k"
	cfg.AdzunaAppID, cfg.AdzunaAppKey = "id", "key"
	if got := sources.NewFromConfig(cfg, http.DefaultClient); len(got) != 6 {
		t.Errorf("got %d sources with credentials, want 6", len(got))
	}
}

func TestInferExperience(t *testing.T) {
	cases := []struct {
		title, desc string
		want        models.Experience
	}{
		{"Software Engineering Intern", "", models.ExperienceIntern},
		{"Jr. Developer", "", models.ExperienceJunior},
		{"Staff Engineer", "", models.ExperienceSenior},
		{"Engineer", "You have 2+ years of experience", models.ExperienceJuniorMid},
		{"Engineer", "At least 5 years with Go", models.ExperienceMidSenior},
		{"Engineer", "10 years", models.ExperienceSenior},
		{"Engineer", "", models.ExperienceMid},
	}
	for _, tc := range cases {
		if got := sources.InferExperience(tc.title, tc.desc); got != tc.want {
			t.Errorf("InferExperience(%q, %q) = %s, want %s", tc.title, tc.desc, got, tc.want)
		}
	}
}

func TestInferCategory(t *testing.T) {
	cases := []struct {
		title string
		tags  []string
		want  models.Category
	}{
		{"Machine Learning Engineer", nil, models.CategoryAI},
		{"React Native Developer", nil, models.CategoryMobile},
		{"Full Stack Engineer", nil, models.CategoryFullstack},
		{"Engineer", []string{"vue"}, models.CategoryFrontend},
		{"Office Manager", nil, models.CategoryOther},
	}
	for _, tc := range cases {
		if got := sources.InferCategory(tc.title, "", tc.tags); got != tc.want {
			t.Errorf("InferCategory(%q, %v) = %s, want %s", tc.title, tc.tags, got, tc.want)
		}
	}
}
