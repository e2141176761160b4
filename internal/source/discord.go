package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zach-wendland/stonkzap/internal/domain"
)

const discordMessagesURL = "https://discord.com/api/v10/channels/%s/messages?limit=100"

// DiscordAdapter reads recent messages from an explicit channel allowlist
// via the REST API. Only allowlisted channels are ever read; without an
// allowlist the adapter is unconfigured even if a token is set.
type DiscordAdapter struct {
	*client
	botToken   string
	channelIDs []string
}

func NewDiscordAdapter(botToken, channelAllowlist string) *DiscordAdapter {
	var ids []string
	for _, id := range strings.Split(channelAllowlist, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return &DiscordAdapter{
		client:     newClient("discord", rate.Limit(2), 4),
		botToken:   botToken,
		channelIDs: ids,
	}
}

func (a *DiscordAdapter) Source() domain.Source { return domain.SourceDiscord }

func (a *DiscordAdapter) Configured() bool {
	return a.botToken != "" && len(a.channelIDs) > 0
}

type discordMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Author    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Bot      bool   `json:"bot"`
	} `json:"author"`
}

func (a *DiscordAdapter) Fetch(ctx context.Context, inst domain.Instrument, since time.Time) ([]domain.RawPost, error) {
	if !a.Configured() {
		return nil, domain.ErrNotConfigured
	}

	header := http.Header{}
	header.Set("Authorization", "Bot "+a.botToken)

	mention := "$" + inst.Symbol
	var posts []domain.RawPost
	for _, channelID := range a.channelIDs {
		var messages []discordMessage
		endpoint := fmt.Sprintf(discordMessagesURL, channelID)
		if err := a.getJSON(ctx, endpoint, header, &messages); err != nil {
			return nil, fmt.Errorf("discord channel %s: %w", channelID, err)
		}

		for _, m := range messages {
			if m.Author.Bot || m.Timestamp.Before(since) {
				continue
			}
			// Discord has no symbol stream; keep only messages that
			// mention the instrument at all and let the cleaner do the
			// real extraction.
			upper := strings.ToUpper(m.Content)
			if !strings.Contains(upper, strings.ToUpper(mention)) && !strings.Contains(upper, inst.Symbol) {
				continue
			}
			posts = append(posts, domain.RawPost{
				Source:       domain.SourceDiscord,
				PlatformID:   m.ID,
				AuthorID:     m.Author.ID,
				AuthorHandle: m.Author.Username,
				CreatedAt:    m.Timestamp,
				Text:         m.Content,
				Permalink:    fmt.Sprintf("https://discord.com/channels/@me/%s/%s", channelID, m.ID),
			})
		}
	}
	return posts, nil
}
