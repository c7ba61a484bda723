package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"revius/models"
	"revius/utils/textextract"
)

const omdbBaseURL = "https://www.omdbapi.com/"

// omdbSearcher queries OMDB's search endpoint. Search results carry no
// rating or synopsis; those stay empty on the candidates.
type omdbSearcher struct {
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
}

// NewOMDBSearcher constructs the OMDB source adapter.
func NewOMDBSearcher(apiKey string, httpc *http.Client) Searcher {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &omdbSearcher{
		apiKey: strings.TrimSpace(apiKey),
		httpc:  httpc,
		// Free-tier OMDB keys are capped at 1000 requests/day.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
}

func (c *omdbSearcher) Name() string { return models.SourceOMDB }

type omdbSearchResponse struct {
	Search []struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		IMDBID string `json:"imdbID"`
		Type   string `json:"Type"`
		Poster string `json:"Poster"`
	} `json:"Search"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

func (c *omdbSearcher) Search(ctx context.Context, title string, year int) ([]models.CandidateMatch, error) {
	if c.apiKey == "" {
		return nil, errors.New("omdb api key not configured")
	}

	var out []models.CandidateMatch
	var errs []error

	for _, searchType := range []string{"movie", "series"} {
		candidates, err := c.searchType(ctx, searchType, title, year)
		if err != nil {
			errs = append(errs, fmt.Errorf("omdb %s search: %w", searchType, err))
			continue
		}
		out = append(out, candidates...)
	}

	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (c *omdbSearcher) searchType(ctx context.Context, searchType, title string, year int) ([]models.CandidateMatch, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, omdbBaseURL, nil)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("s", title)
	q.Set("type", searchType)
	if year > 0 {
		q.Set("y", strconv.Itoa(year))
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

	var payload omdbSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	// OMDB reports "no results" in-band with Response:"False".
	if payload.Response != "True" {
		return nil, nil
	}

	mediaType := models.MediaTypeMovie
	if searchType == "series" {
		mediaType = models.MediaTypeTV
	}

	out := make([]models.CandidateMatch, 0, len(payload.Search))
	for _, r := range payload.Search {
		if r.Title == "" || r.IMDBID == "" {
			continue
		}
		poster := r.Poster
		if poster == "N/A" {
			poster = ""
		}
		out = append(out, models.CandidateMatch{
			Title:       r.Title,
			Year:        textextract.Year(r.Year), // "2004" or "2004–2009"
			ExternalID:  r.IMDBID,
			MediaType:   mediaType,
			SourceName:  models.SourceOMDB,
			PosterURL:   poster,
			ExternalURL: "https://www.imdb.com/title/" + r.IMDBID + "/",
		})
	}
	return out, nil
}
