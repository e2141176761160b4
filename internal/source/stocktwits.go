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

const stocktwitsStreamURL = "https://api.stocktwits.com/api/2/streams/symbol/%s.json"

// StockTwitsAdapter reads the public per-symbol message stream. The API
// works without a token but gets a far lower rate limit, so the adapter
// counts as configured either way and just attaches the token when present.
type StockTwitsAdapter struct {
	*client
	token string
}

func NewStockTwitsAdapter(token string) *StockTwitsAdapter {
	return &StockTwitsAdapter{
		client: newClient("stocktwits", rate.Limit(0.5), 1),
		token:  token,
	}
}

func (a *StockTwitsAdapter) Source() domain.Source { return domain.SourceStockTwits }

func (a *StockTwitsAdapter) Configured() bool { return true }

type stocktwitsStream struct {
	Messages []struct {
		ID        int64  `json:"id"`
		Body      string `json:"body"`
		CreatedAt string `json:"created_at"`
		User      struct {
			ID        int64  `json:"id"`
			Username  string `json:"username"`
			Followers int    `json:"followers"`
			Following int    `json:"following"`
		} `json:"user"`
		Likes struct {
			Total int `json:"total"`
		} `json:"likes"`
		Conversation struct {
			Replies int `json:"replies"`
		} `json:"conversation"`
	} `json:"messages"`
}

func (a *StockTwitsAdapter) Fetch(ctx context.Context, inst domain.Instrument, since time.Time) ([]domain.RawPost, error) {
	endpoint := fmt.Sprintf(stocktwitsStreamURL, url.PathEscape(inst.Symbol))
	if a.token != "" {
		endpoint += "?access_token=" + url.QueryEscape(a.token)
	}

	var stream stocktwitsStream
	if err := a.getJSON(ctx, endpoint, http.Header{}, &stream); err != nil {
		return nil, fmt.Errorf("stocktwits stream: %w", err)
	}

	posts := make([]domain.RawPost, 0, len(stream.Messages))
	for _, m := range stream.Messages {
		createdAt, err := time.Parse("2006-01-02T15:04:05Z", m.CreatedAt)
		if err != nil || createdAt.Before(since) {
			continue
		}
		posts = append(posts, domain.RawPost{
			Source:         domain.SourceStockTwits,
			PlatformID:     fmt.Sprintf("%d", m.ID),
			AuthorID:       fmt.Sprintf("%d", m.User.ID),
			AuthorHandle:   m.User.Username,
			CreatedAt:      createdAt,
			Text:           m.Body,
			LikeCount:      m.Likes.Total,
			ReplyCount:     m.Conversation.Replies,
			FollowerCount:  m.User.Followers,
			FollowingCount: m.User.Following,
			Permalink:      fmt.Sprintf("https://stocktwits.com/%s/message/%d", m.User.Username, m.ID),
		})
	}
	return posts, nil
}
