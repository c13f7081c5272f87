package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jonesrussell/projectintel/internal/httpx"
)

const twitterUserFields = "description,public_metrics,profile_image_url,verified,verified_type"

// TwitterClient fetches profile data from the X API v2.
type TwitterClient struct {
	client *http.Client
	apiURL string
	bearer string
}

// NewTwitterClient creates a client. An empty bearer token disables the
// source.
func NewTwitterClient(apiURL, bearer string) *TwitterClient {
	return &TwitterClient{
		client: httpx.NewClient(0),
		apiURL: strings.TrimSuffix(apiURL, "/"),
		bearer: bearer,
	}
}

// Enabled reports whether a bearer token is configured.
func (c *TwitterClient) Enabled() bool {
	return c.bearer != ""
}

// TwitterUser is the subset of the users endpoint payload we keep.
type TwitterUser struct {
	Username      string `json:"username"`
	Description   string `json:"description"`
	ProfileImage  string `json:"profile_image_url"`
	Verified      bool   `json:"verified"`
	VerifiedType  string `json:"verified_type"`
	PublicMetrics struct {
		Followers int `json:"followers_count"`
		Following int `json:"following_count"`
		Tweets    int `json:"tweet_count"`
	} `json:"public_metrics"`
}

// UserByUsername looks up one profile by handle.
func (c *TwitterClient) UserByUsername(ctx context.Context, username string) (*TwitterUser, error) {
	params := url.Values{"user.fields": {twitterUserFields}}
	headers := map[string]string{"Authorization": "Bearer " + c.bearer}

	var resp struct {
		Data TwitterUser `json:"data"`
	}
	if err := getJSON(ctx, c.client, c.apiURL+"/"+url.PathEscape(username), headers, params, &resp); err != nil {
		return nil, fmt.Errorf("twitter user %s: %w", username, err)
	}
	if resp.Data.Username == "" {
		return nil, fmt.Errorf("twitter user %s: empty profile", username)
	}
	return &resp.Data, nil
}
