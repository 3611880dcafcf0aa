package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jobboard/backend/models"
)

// StackOverflowSource reads the legacy Stack Overflow Jobs RSS feed. Like
// GitHub Jobs it has been retired, so failures are expected and swallowed.
type StackOverflowSource struct {
	fetcher
	baseURL string
}

// NewStackOverflow creates the source against baseURL
func NewStackOverflow(baseURL string, client *http.Client) *StackOverflowSource {
	return &StackOverflowSource{fetcher: newFetcher(client), baseURL: baseURL}
}

func (s *StackOverflowSource) Name() string { return StackOverflow }

// titles look like "Senior Go Engineer at Acme (Berlin, Germany)"
var soTitleRe = regexp.MustCompile(`^(.*?) at (.*?)(?: \((.*)\))?$`)

// Search fetches feed items matching query. RSS and Atom are both accepted.
func (s *StackOverflowSource) Search(ctx context.Context, query string) ([]models.ExternalJob, error) {
	params := url.Values{}
	params.Set("q", query)

	body, err := s.get(ctx, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	// gofeed.Parser keeps per-parse state, so each search gets its own
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	out := make([]models.ExternalJob, 0, len(feed.Items))
	for _, item := range feed.Items {
		title, company, location := item.Title, "", item.Custom["location"]
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			company = item.Authors[0].Name
		}
		if m := soTitleRe.FindStringSubmatch(item.Title); m != nil {
			title = m[1]
			if company == "" {
				company = m[2]
			}
			if location == "" {
				location = m[3]
			}
		}

		id := item.GUID
		if id == "" {
			id = item.Link
		}

		j := models.ExternalJob{
			ID:             externalID(StackOverflow, lastPathSegment(id)),
			Title:          strings.TrimSpace(title),
			Company:        strings.TrimSpace(company),
			Location:       strings.TrimSpace(location),
			Type:           models.JobTypeFullTime,
			Description:    item.Description,
			ApplicationURL: item.Link,
			Tags:           item.Categories,
			Source:         StackOverflow,
			OriginalURL:    item.Link,
			CreatedAt:      publishedAt(item),
		}
		finish(&j)
		out = append(out, j)
	}
	return out, nil
}

func publishedAt(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	}
	return parseTime(item.Published, time.RFC1123Z, time.RFC1123)
}

func lastPathSegment(raw string) string {
	raw = strings.TrimRight(raw, "/")
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		return raw[i+1:]
	}
	return raw
}
