package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"revius/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	// w500 is plenty for list cards; avoids pulling "original" renditions.
	tmdbPosterSize = "w500"
)

// tmdbSearcher queries TMDB's movie and tv search endpoints separately per
// title and merges the results.
type tmdbSearcher struct {
	apiKey   string
	language string
	httpc    *http.Client
	limiter  *rate.Limiter
}

// NewTMDBSearcher constructs the TMDB source adapter.
func NewTMDBSearcher(apiKey, language string, httpc *http.Client) Searcher {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &tmdbSearcher{
		apiKey:   strings.TrimSpace(apiKey),
		language: language,
		httpc:    httpc,
		// TMDB has generous rate limits; this just keeps bursts polite.
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
	}
}

func (c *tmdbSearcher) Name() string { return models.SourceTMDB }

type tmdbSearchResponse struct {
	Results []struct {
		ID           int64   `json:"id"`
		Title        string  `json:"title"`
		Name         string  `json:"name"`
		Overview     string  `json:"overview"`
		PosterPath   string  `json:"poster_path"`
		VoteAverage  float64 `json:"vote_average"`
		ReleaseDate  string  `json:"release_date"`
		FirstAirDate string  `json:"first_air_date"`
	} `json:"results"`
}

func (c *tmdbSearcher) Search(ctx context.Context, title string, year int) ([]models.CandidateMatch, error) {
	if c.apiKey == "" {
		return nil, errors.New("tmdb api key not configured")
	}

	var out []models.CandidateMatch
	var errs []error

	for _, endpoint := range []string{"movie", "tv"} {
		candidates, err := c.searchEndpoint(ctx, endpoint, title, year)
		if err != nil {
			errs = append(errs, fmt.Errorf("tmdb %s search: %w", endpoint, err))
			continue
		}
		out = append(out, candidates...)
	}

	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (c *tmdbSearcher) searchEndpoint(ctx context.Context, endpoint, title string, year int) ([]models.CandidateMatch, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL, err := url.JoinPath(tmdbBaseURL, "search", endpoint)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	q.Set("api_key", c.apiKey)
	q.Set("query", title)
	if lang := strings.TrimSpace(c.language); lang != "" {
		q.Set("language", lang)
	}
	if year > 0 {
		// Year narrows the search but absence never excludes results.
		if endpoint == "movie" {
			q.Set("year", strconv.Itoa(year))
		} else {
			q.Set("first_air_date_year", strconv.Itoa(year))
		}
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed: %s", resp.Status)
	}

	var payload tmdbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	mediaType := models.MediaTypeMovie
	if endpoint == "tv" {
		mediaType = models.MediaTypeTV
	}

	out := make([]models.CandidateMatch, 0, len(payload.Results))
	for _, r := range payload.Results {
		name := r.Title
		if name == "" {
			name = r.Name
		}
		if name == "" {
			continue
		}
		out = append(out, models.CandidateMatch{
			Title:       name,
			Year:        parseTMDBYear(r.ReleaseDate, r.FirstAirDate),
			ExternalID:  strconv.FormatInt(r.ID, 10),
			MediaType:   mediaType,
			SourceName:  models.SourceTMDB,
			PosterURL:   buildTMDBPoster(r.PosterPath),
			Rating:      r.VoteAverage,
			Synopsis:    r.Overview,
			ExternalURL: fmt.Sprintf("https://www.themoviedb.org/%s/%d", endpoint, r.ID),
		})
	}
	return out, nil
}

func parseTMDBYear(movieDate, seriesDate string) int {
	date := movieDate
	if date == "" {
		date = seriesDate
	}
	if date == "" {
		return 0
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Year()
	}
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			return y
		}
	}
	return 0
}

func buildTMDBPoster(imagePath string) string {
	trimmed := strings.TrimSpace(imagePath)
	if trimmed == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", tmdbImageBaseURL, path.Join(tmdbPosterSize, strings.TrimPrefix(trimmed, "/")))
}
