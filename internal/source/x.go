package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

const xSearchURL = "https://api.twitter.com/2/tweets/search/recent"

// XAdapter queries the X API v2 recent search endpoint for cashtag
// mentions of the instrument.
type XAdapter struct {
	*client
	bearerToken string
}

func NewXAdapter(bearerToken string) *XAdapter {
	return &XAdapter{
		client:      newClient("x", rate.Limit(1), 2),
		bearerToken: bearerToken,
	}
}

func (a *XAdapter) Source() domain.Source { return domain.SourceX }

func (a *XAdapter) Configured() bool { return a.bearerToken != "" }

type xSearchResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		Text          string    `json:"text"`
		AuthorID      string    `json:"author_id"`
		CreatedAt     time.Time `json:"created_at"`
		Lang          string    `json:"lang"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			ReplyCount   int `json:"reply_count"`
			RetweetCount int `json:"retweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID            string `json:"id"`
			Username      string `json:"username"`
			PublicMetrics struct {
				FollowersCount int `json:"followers_count"`
				FollowingCount int `json:"following_count"`
			} `json:"public_metrics"`
		} `json:"users"`
	} `json:"includes"`
}

func (a *XAdapter) Fetch(ctx context.Context, inst domain.Instrument, since time.Time) ([]domain.RawPost, error) {
	if !a.Configured() {
		return nil, domain.ErrNotConfigured
	}

	q := url.Values{}
	q.Set("query", fmt.Sprintf("$%s lang:en -is:retweet", inst.Symbol))
	q.Set("start_time", since.UTC().Format(time.RFC3339))
	q.Set("max_results", "100")
	q.Set("tweet.fields", "created_at,author_id,lang,public_metrics")
	q.Set("expansions", "author_id")
	q.Set("user.fields", "username,public_metrics")

	header := http.Header{}
	header.Set("Authorization", "Bearer "+a.bearerToken)

	var resp xSearchResponse
	if err := a.getJSON(ctx, xSearchURL+"?"+q.Encode(), header, &resp); err != nil {
		return nil, fmt.Errorf("x search: %w", err)
	}

	users := make(map[string]struct {
		handle    string
		followers int
		following int
	}, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		users[u.ID] = struct {
			handle    string
			followers int
			following int
		}{u.Username, u.PublicMetrics.FollowersCount, u.PublicMetrics.FollowingCount}
	}

	posts := make([]domain.RawPost, 0, len(resp.Data))
	for _, t := range resp.Data {
		u := users[t.AuthorID]
		posts = append(posts, domain.RawPost{
			Source:         domain.SourceX,
			PlatformID:     t.ID,
			AuthorID:       t.AuthorID,
			AuthorHandle:   u.handle,
			CreatedAt:      t.CreatedAt,
			Text:           t.Text,
			Lang:           t.Lang,
			LikeCount:      t.PublicMetrics.LikeCount,
			ReplyCount:     t.PublicMetrics.ReplyCount,
			RepostCount:    t.PublicMetrics.RetweetCount,
			FollowerCount:  u.followers,
			FollowingCount: u.following,
			Permalink:      fmt.Sprintf("https://x.com/%s/status/%s", u.handle, t.ID),
		})
	}
	return posts, nil
}
