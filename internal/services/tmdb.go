// TMDB API implementation of [MovieService]
//
// TMDB API response types based on https://developer.themoviedb.org/reference/intro/getting-started
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"

	PosterPlaceholder   = "https://via.placeholder.com/500x750?text=No+Image"
	BackdropPlaceholder = "https://via.placeholder.com/1920x1080?text=No+Image"

	defaultSort = "popularity.desc"
)

// TMDBMovie is a movie as listed in TMDB result pages.
type TMDBMovie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	Popularity    float64 `json:"popularity"`
	GenreIDs      []int   `json:"genre_ids"`
	Adult         bool    `json:"adult"`
}

// MoviePage is one page of movie results.
type MoviePage struct {
	Page         int         `json:"page"`
	Results      []TMDBMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

// Genre is a TMDB movie genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Video is a trailer, teaser or clip hosted on a video site.
type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// Review is a user review.
type Review struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// ReviewPage is one page of reviews.
type ReviewPage struct {
	Page         int      `json:"page"`
	Results      []Review `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// CastMember is a credited actor.
type CastMember struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

// CrewMember is a credited crew member.
type CrewMember struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits lists a movie's cast and crew.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type videoList struct {
	Results []Video `json:"results"`
}

// MovieDetails is a movie with every appended sub-resource.
type MovieDetails struct {
	TMDBMovie
	Runtime         int        `json:"runtime"`
	Tagline         string     `json:"tagline"`
	Status          string     `json:"status"`
	Genres          []Genre    `json:"genres"`
	Videos          videoList  `json:"videos"`
	Credits         Credits    `json:"credits"`
	Reviews         ReviewPage `json:"reviews"`
	Similar         MoviePage  `json:"similar"`
	Recommendations MoviePage  `json:"recommendations"`
}

// Trailer returns the first YouTube trailer, falling back to any YouTube video.
func (d *MovieDetails) Trailer() (Video, bool) {
	return pickTrailer(d.Videos.Results)
}

// Directors returns the names of the credited directors.
func (d *MovieDetails) Directors() []string {
	var names []string
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			names = append(names, c.Name)
		}
	}
	return names
}

type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// TMDBClient implements [MovieService] for The Movie Database.
type TMDBClient struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *log.Logger
}

// TMDBOption configures a [TMDBClient].
type TMDBOption func(*TMDBClient)

// WithHTTPClient sets the base HTTP client. Bearer authentication wraps its transport.
func WithHTTPClient(c *http.Client) TMDBOption {
	return func(t *TMDBClient) { t.httpClient = c }
}

// WithTMDBLogger sets the client's logger.
func WithTMDBLogger(l *log.Logger) TMDBOption {
	return func(t *TMDBClient) { t.logger = l }
}

// NewTMDBClient creates a TMDB client from configuration.
//
// A configured access token is sent as an OAuth2 bearer token; otherwise the API key is added to
// every query. It returns [shared.ErrMissingConfig] when neither is set.
func NewTMDBClient(cfg shared.TMDBConfig, opts ...TMDBOption) (*TMDBClient, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("%w: tmdb api_key or access_token", shared.ErrMissingConfig)
	}

	c := &TMDBClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       shared.NopLogger(),
	}
	if c.baseURL == "" {
		c.baseURL = tmdbBaseURL
	}
	if c.imageBaseURL == "" {
		c.imageBaseURL = tmdbImageBaseURL
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	c.limiter = rate.NewLimiter(limit, 1)

	for _, opt := range opts {
		opt(c)
	}

	if cfg.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		authed := oauth2.NewClient(ctx, src)
		authed.Timeout = c.httpClient.Timeout
		c.httpClient = authed
	} else {
		c.apiKey = cfg.APIKey
	}

	return c, nil
}

func (c *TMDBClient) Name() string {
	return "TMDB"
}

// doRequest waits for the limiter, performs a GET against endpoint and decodes the JSON body
// into result.
func (c *TMDBClient) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", shared.ErrAPIRequest, err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	apiURL := c.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("tmdb request", "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrMovieNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.StatusMessage != "" {
			return fmt.Errorf("%w: tmdb status %d: %s", shared.ErrAPIRequest, resp.StatusCode, apiErr.StatusMessage)
		}
		return fmt.Errorf("%w: tmdb status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *TMDBClient) page(ctx context.Context, endpoint string, page int, params url.Values) (*MoviePage, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("page", strconv.Itoa(max(page, 1)))

	var out MoviePage
	if err := c.doRequest(ctx, endpoint, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Popular lists popular movies.
func (c *TMDBClient) Popular(ctx context.Context, page int) (*MoviePage, error) {
	return c.page(ctx, "/movie/popular", page, nil)
}

// Trending lists this week's trending movies.
func (c *TMDBClient) Trending(ctx context.Context, page int) (*MoviePage, error) {
	return c.page(ctx, "/trending/movie/week", page, nil)
}

// TopRated lists top rated movies.
func (c *TMDBClient) TopRated(ctx context.Context, page int) (*MoviePage, error) {
	return c.page(ctx, "/movie/top_rated", page, nil)
}

// Search finds movies whose title matches query.
func (c *TMDBClient) Search(ctx context.Context, query string, page int) (*MoviePage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	return c.page(ctx, "/search/movie", page, url.Values{"query": {query}})
}

// Details fetches a movie with videos, credits, reviews, similar and recommendations appended.
func (c *TMDBClient) Details(ctx context.Context, id int) (*MovieDetails, error) {
	params := url.Values{"append_to_response": {"videos,credits,reviews,similar,recommendations"}}

	var out MovieDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Genres lists movie genres.
func (c *TMDBClient) Genres(ctx context.Context) ([]Genre, error) {
	var out struct {
		Genres []Genre `json:"genres"`
	}
	if err := c.doRequest(ctx, "/genre/movie/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// Discover lists movies matching opts.
func (c *TMDBClient) Discover(ctx context.Context, opts DiscoverOptions) (*MoviePage, error) {
	params := url.Values{}
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = defaultSort
	}
	params.Set("sort_by", sortBy)
	if opts.GenreID > 0 {
		params.Set("with_genres", strconv.Itoa(opts.GenreID))
	}
	if opts.Year > 0 {
		params.Set("year", strconv.Itoa(opts.Year))
	}
	if opts.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(opts.MinRating, 'f', -1, 64))
	}
	return c.page(ctx, "/discover/movie", opts.Page, params)
}

// Videos lists a movie's videos.
func (c *TMDBClient) Videos(ctx context.Context, id int) ([]Video, error) {
	var out videoList
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d/videos", id), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Reviews lists a movie's reviews.
func (c *TMDBClient) Reviews(ctx context.Context, id, page int) (*ReviewPage, error) {
	params := url.Values{"page": {strconv.Itoa(max(page, 1))}}

	var out ReviewPage
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d/reviews", id), params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Similar lists movies similar to id.
func (c *TMDBClient) Similar(ctx context.Context, id, page int) (*MoviePage, error) {
	return c.page(ctx, fmt.Sprintf("/movie/%d/similar", id), page, nil)
}

// Recommendations lists movies recommended alongside id.
func (c *TMDBClient) Recommendations(ctx context.Context, id, page int) (*MoviePage, error) {
	return c.page(ctx, fmt.Sprintf("/movie/%d/recommendations", id), page, nil)
}

// ImageURL resolves a poster path at size (default w500), or a placeholder for an empty path.
func (c *TMDBClient) ImageURL(path, size string) string {
	if path == "" {
		return PosterPlaceholder
	}
	if size == "" {
		size = "w500"
	}
	return c.imageBaseURL + "/" + size + path
}

// BackdropURL resolves a backdrop path at size (default original), or a placeholder.
func (c *TMDBClient) BackdropURL(path, size string) string {
	if path == "" {
		return BackdropPlaceholder
	}
	if size == "" {
		size = "original"
	}
	return c.imageBaseURL + "/" + size + path
}

// TrailerURL returns the embeddable YouTube player URL for a video key.
func TrailerURL(key string) string {
	return "https://www.youtube.com/embed/" + url.PathEscape(key) + "?autoplay=1&controls=1&modestbranding=1&rel=0"
}

// ToMovie converts a TMDB listing into the catalog item handed to the favorites and
// continue-watching managers.
func ToMovie(m TMDBMovie) models.Movie {
	title := m.Title
	if title == "" {
		title = m.OriginalTitle
	}
	return models.Movie{
		ID:           m.ID,
		Title:        title,
		BackdropPath: m.BackdropPath,
		PosterPath:   m.PosterPath,
		VoteAverage:  m.VoteAverage,
		ReleaseDate:  m.ReleaseDate,
		Overview:     m.Overview,
	}
}

// DetailsToMovie is [ToMovie] for a details response, adding the formatted runtime.
func DetailsToMovie(d *MovieDetails) models.Movie {
	movie := ToMovie(d.TMDBMovie)
	if d.Runtime > 0 {
		movie.Duration = FormatRuntime(d.Runtime)
	}
	return movie
}

// ToMovies converts a result page.
func ToMovies(page *MoviePage) []models.Movie {
	if page == nil {
		return nil
	}
	out := make([]models.Movie, 0, len(page.Results))
	for _, m := range page.Results {
		out = append(out, ToMovie(m))
	}
	return out
}

// FormatRuntime renders minutes as "2h 5m".
func FormatRuntime(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func pickTrailer(videos []Video) (Video, bool) {
	for _, v := range videos {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			return v, true
		}
	}
	for _, v := range videos {
		if v.Site == "YouTube" {
			return v, true
		}
	}
	return Video{}, false
}

var _ MovieService = (*TMDBClient)(nil)
