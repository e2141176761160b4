package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

const (
	redditTokenURL  = "https://www.reddit.com/api/v1/access_token"
	redditSearchURL = "https://oauth.reddit.com/r/%s/search.json"
)

// finance subreddits searched for instrument mentions
var redditSubreddits = []string{"wallstreetbets", "stocks", "investing"}

// RedditAdapter searches finance subreddits via the OAuth API. The app
// token is cached until shortly before expiry.
type RedditAdapter struct {
	*client
	clientID     string
	clientSecret string
	userAgent    string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewRedditAdapter(clientID, clientSecret, userAgent string) *RedditAdapter {
	return &RedditAdapter{
		client:       newClient("reddit", rate.Limit(1), 2),
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
	}
}

func (a *RedditAdapter) Source() domain.Source { return domain.SourceReddit }

func (a *RedditAdapter) Configured() bool {
	return a.clientID != "" && a.clientSecret != ""
}

type redditTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID          string  `json:"id"`
				Author      string  `json:"author"`
				AuthorFull  string  `json:"author_fullname"`
				CreatedUTC  float64 `json:"created_utc"`
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				Permalink   string  `json:"permalink"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (a *RedditAdapter) Fetch(ctx context.Context, inst domain.Instrument, since time.Time) ([]domain.RawPost, error) {
	if !a.Configured() {
		return nil, domain.ErrNotConfigured
	}

	token, err := a.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("reddit auth: %w", err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("User-Agent", a.userAgent)

	var posts []domain.RawPost
	for _, sub := range redditSubreddits {
		q := url.Values{}
		q.Set("q", fmt.Sprintf("%q OR %q", "$"+inst.Symbol, inst.CompanyName))
		q.Set("sort", "new")
		q.Set("restrict_sr", "1")
		q.Set("limit", "100")

		var listing redditListing
		endpoint := fmt.Sprintf(redditSearchURL, sub) + "?" + q.Encode()
		if err := a.getJSON(ctx, endpoint, header, &listing); err != nil {
			return nil, fmt.Errorf("reddit search r/%s: %w", sub, err)
		}

		for _, child := range listing.Data.Children {
			d := child.Data
			createdAt := time.Unix(int64(d.CreatedUTC), 0).UTC()
			if createdAt.Before(since) {
				continue
			}
			authorID := d.AuthorFull
			if authorID == "" {
				authorID = d.Author
			}
			posts = append(posts, domain.RawPost{
				Source:       domain.SourceReddit,
				PlatformID:   d.ID,
				AuthorID:     authorID,
				AuthorHandle: d.Author,
				CreatedAt:    createdAt,
				Text:         strings.TrimSpace(d.Title + " " + d.Selftext),
				LikeCount:    d.Score,
				ReplyCount:   d.NumComments,
				Permalink:    "https://www.reddit.com" + d.Permalink,
			})
		}
	}
	return posts, nil
}

// accessToken returns a valid app-only OAuth token, refreshing when within
// a minute of expiry.
func (a *RedditAdapter) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry.Add(-time.Minute)) {
		return a.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, redditTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", domain.ErrRateLimited
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", domain.ErrAuth
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("token status %d", resp.StatusCode)
	}

	var tok redditTokenResponse
	if err := decodeJSON(resp.Body, &tok); err != nil {
		return "", err
	}
	if tok.AccessToken == "" {
		return "", domain.ErrAuth
	}

	a.token = tok.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	return a.token, nil
}
