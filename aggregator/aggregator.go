// Package aggregator fans a search out to external job sources and merges
// the results. A failing source never fails the whole search.
package aggregator

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jobboard/backend/models"
	"github.com/jobboard/backend/sources"
	"github.com/jobboard/backend/storage"
)

var (
	// ErrEmptyQuery is returned when no search terms were given
	ErrEmptyQuery = errors.New("query is required")
	// ErrNoSources is returned when none of the requested sources exist
	ErrNoSources = errors.New("no known sources requested")
)

// Aggregator runs searches across sources
type Aggregator struct {
	sources       map[string]sources.Source
	cache         *storage.Cache
	cacheTTL      time.Duration
	sourceTimeout time.Duration
	maxConcurrent int
}

// New creates an Aggregator. cache may be nil.
func New(srcs map[string]sources.Source, cache *storage.Cache, cacheTTL time.Duration) *Aggregator {
	return &Aggregator{
		sources:       srcs,
		cache:         cache,
		cacheTTL:      cacheTTL,
		sourceTimeout: 20 * time.Second,
		maxConcurrent: 4,
	}
}

// Names lists the enabled sources, sorted
func (a *Aggregator) Names() []string {
	names := make([]string, 0, len(a.sources))
	for name := range a.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Search queries the named sources, or every source when names is empty.
// Unknown or disabled names are skipped; resp.Sources lists the ones queried.
// Results are cached per query and source set.
func (a *Aggregator) Search(ctx context.Context, query string, names []string) (models.ExternalJobsResponse, error) {
	query, selected, err := a.prepare(query, names)
	if err != nil {
		return models.ExternalJobsResponse{}, err
	}

	key := cacheKey(query, selected)
	var cached models.ExternalJobsResponse
	if hit, err := a.cache.Get(ctx, key, &cached); err != nil {
		log.Warnf("[External] cache read failed: %v", err)
	} else if hit {
		log.WithField("query", query).Debug("[External] cache hit")
		cached.Sources = selected
		return cached, nil
	}

	return a.run(ctx, query, selected, key), nil
}

// Refresh runs the search against every source, bypassing and then
// repopulating the cache
func (a *Aggregator) Refresh(ctx context.Context, query string) (models.ExternalJobsResponse, error) {
	query, selected, err := a.prepare(query, nil)
	if err != nil {
		return models.ExternalJobsResponse{}, err
	}
	return a.run(ctx, query, selected, cacheKey(query, selected)), nil
}

func (a *Aggregator) prepare(query string, names []string) (string, []string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil, ErrEmptyQuery
	}

	if len(names) == 0 {
		names = a.Names()
	}
	seen := make(map[string]bool, len(names))
	selected := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := a.sources[name]; !ok {
			log.Warnf("[External] unknown or disabled source %q", name)
			continue
		}
		selected = append(selected, name)
	}
	if len(selected) == 0 {
		return "", nil, ErrNoSources
	}
	sort.Strings(selected)
	return query, selected, nil
}

type sourceResult struct {
	name string
	jobs []models.ExternalJob
	err  error
}

func (a *Aggregator) run(ctx context.Context, query string, selected []string, key string) models.ExternalJobsResponse {
	log.WithFields(log.Fields{"query": query, "sources": selected}).Info("[External] searching")

	resultsChan := make(chan sourceResult, len(selected))
	sem := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup

	for _, name := range selected {
		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			sctx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
			defer cancel()

			jobs, err := src.Search(sctx, query)
			resultsChan <- sourceResult{name: src.Name(), jobs: jobs, err: err}
		}(a.sources[name])
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	bySource := make(map[string][]models.ExternalJob, len(selected))
	succeeded := 0
	for res := range resultsChan {
		if res.err != nil {
			log.WithField("source", res.name).Warnf("[External] source failed: %v", res.err)
			continue
		}
		succeeded++
		bySource[res.name] = res.jobs
		log.WithField("source", res.name).Infof("[External] %d jobs", len(res.jobs))
	}

	resp := models.ExternalJobsResponse{Jobs: merge(selected, bySource), Sources: selected}
	resp.Total = len(resp.Jobs)

	if succeeded > 0 {
		if err := a.cache.Set(ctx, key, resp, a.cacheTTL); err != nil {
			log.Warnf("[External] cache write failed: %v", err)
		}
	}
	return resp
}

// merge concatenates results in source-name order, drops repeated ids, and
// orders the result newest first
func merge(order []string, bySource map[string][]models.ExternalJob) []models.ExternalJob {
	out := []models.ExternalJob{}
	seen := make(map[string]bool)
	for _, name := range order {
		for _, j := range bySource[name] {
			if j.ID == "" || seen[j.ID] {
				continue
			}
			seen[j.ID] = true
			out = append(out, j)
		}
	}
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out
}

func cacheKey(query string, selected []string) string {
	return "external:" + strings.ToLower(query) + ":" + strings.Join(selected, ",")
}
