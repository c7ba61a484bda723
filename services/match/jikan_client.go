package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"revius/models"
)

const jikanBaseURL = "https://api.jikan.moe/v4"

// jikanSearcher queries Jikan (MyAnimeList) for anime and manga. Jikan
// enforces a hard upstream rate limit, so the anime and manga calls are
// paced roughly 500ms apart via a shared limiter. That pacing is part of
// the adapter's contract, not an optimization.
type jikanSearcher struct {
	httpc   *http.Client
	limiter *rate.Limiter
}

// NewJikanSearcher constructs the Jikan source adapter. No API key needed.
func NewJikanSearcher(httpc *http.Client) Searcher {
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	return &jikanSearcher{
		httpc:   httpc,
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

func (c *jikanSearcher) Name() string { return models.SourceJikan }

type jikanSearchResponse struct {
	Data []struct {
		MalID     int64   `json:"mal_id"`
		URL       string  `json:"url"`
		Title     string  `json:"title"`
		Synopsis  string  `json:"synopsis"`
		Year      int     `json:"year"`
		Score     float64 `json:"score"`
		Published struct {
			From string `json:"from"`
		} `json:"published"`
		Images struct {
			JPG struct {
				ImageURL string `json:"image_url"`
			} `json:"jpg"`
		} `json:"images"`
	} `json:"data"`
}

func (c *jikanSearcher) Search(ctx context.Context, title string, year int) ([]models.CandidateMatch, error) {
	var out []models.CandidateMatch
	var errs []error

	for _, endpoint := range []string{"anime", "manga"} {
		candidates, err := c.searchEndpoint(ctx, endpoint, title)
		if err != nil {
			errs = append(errs, fmt.Errorf("jikan %s search: %w", endpoint, err))
			continue
		}
		out = append(out, candidates...)
	}

	if len(out) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func (c *jikanSearcher) searchEndpoint(ctx context.Context, endpoint, title string) ([]models.CandidateMatch, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s/%s?%s", jikanBaseURL, endpoint, url.Values{
		"q":     []string{title},
		"limit": []string{"10"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed: %s", resp.Status)
	}

	var payload jikanSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	mediaType := models.MediaTypeAnime
	if endpoint == "manga" {
		mediaType = models.MediaTypeManga
	}

	out := make([]models.CandidateMatch, 0, len(payload.Data))
	for _, r := range payload.Data {
		if r.Title == "" {
			continue
		}
		y := r.Year
		if y == 0 && len(r.Published.From) >= 4 {
			if parsed, err := strconv.Atoi(r.Published.From[:4]); err == nil {
				y = parsed
			}
		}
		out = append(out, models.CandidateMatch{
			Title:       r.Title,
			Year:        y,
			ExternalID:  strconv.FormatInt(r.MalID, 10),
			MediaType:   mediaType,
			SourceName:  models.SourceJikan,
			PosterURL:   r.Images.JPG.ImageURL,
			Rating:      r.Score,
			Synopsis:    r.Synopsis,
			ExternalURL: r.URL,
		})
	}
	return out, nil
}
