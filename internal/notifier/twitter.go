package notifier

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/changelog-relay/internal/changelog"
)

const maxTweetLength = 280

// statusUpdater is the part of the Twitter client the notifier needs
type statusUpdater interface {
	Update(status string, params *twitter.StatusUpdateParams) (*twitter.Tweet, error)
}

// statusService adapts twitter.StatusService, which also returns the raw response
type statusService struct {
	svc *twitter.StatusService
}

func (s statusService) Update(status string, params *twitter.StatusUpdateParams) (*twitter.Tweet, error) {
	tweet, _, err := s.svc.Update(status, params)
	return tweet, err
}

// TwitterNotifier posts updates to Twitter
type TwitterNotifier struct {
	statuses statusUpdater
}

// NewTwitterNotifier creates a new Twitter notifier using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterNotifier() (*TwitterNotifier, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{statuses: statusService{svc: client.Statuses}}, nil
}

// Notify posts a tweet for the update
func (n *TwitterNotifier) Notify(ctx context.Context, u *changelog.Update) error {
	if err := ctx.Err(); err != nil {
		return &PostError{Destination: "twitter", Date: u.Date, Err: err}
	}

	if _, err := n.statuses.Update(formatTweet(u), nil); err != nil {
		return &PostError{Destination: "twitter", Date: u.Date, Err: err}
	}
	return nil
}

// formatTweet formats an update as a tweet
func formatTweet(u *changelog.Update) string {
	var tweet strings.Builder
	tweet.WriteString("New update: " + u.Date + "\n\n")
	tweet.WriteString(strings.TrimRight(u.Content, "\n"))

	// Twitter limit is 280 characters
	return truncateRunes(tweet.String(), maxTweetLength)
}
