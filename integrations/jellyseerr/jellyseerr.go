// Package jellyseerr talks to a Jellyseerr instance: submitting media
// requests and listing what has already been requested so the dashboard can
// hide it.
package jellyseerr

import (
	"context"
	"fmt"
	"strings"

	"github.com/releaserr/releaserr/pkg/httpclient"
	"github.com/sirupsen/logrus"
)

// requestPageSize is how many existing requests we pull per page when
// building the requested set.
const requestPageSize = 100

// MediaKey identifies a movie or TV show across the Jellyseerr API.
type MediaKey struct {
	Type   string
	TMDBID int
}

type Client struct {
	api     *httpclient.Client
	apiKey  string
	baseURL string
}

func NewClient(api *httpclient.Client, apiKey, baseURL string) *Client {
	return &Client{
		api:     api,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{"X-Api-Key": c.apiKey}
}

// RequestMedia submits a request for a movie or TV show. For TV the caller
// may name specific seasons; with none given Jellyseerr requests all of them.
func (c *Client) RequestMedia(ctx context.Context, mediaType string, tmdbID int, seasons []int) error {
	normalized := "movie"
	if mediaType == "tv" {
		normalized = "tv"
	}

	body := map[string]any{
		"mediaType": normalized,
		"mediaId":   tmdbID,
	}
	if normalized == "tv" && len(seasons) > 0 {
		body["seasons"] = seasons
	}

	logrus.Infof("[JELLYSEERR] requesting %s %d", normalized, tmdbID)
	if err := c.api.PostJSON(ctx, c.baseURL+"/api/v1/request", body, c.headers(), nil); err != nil {
		return fmt.Errorf("jellyseerr request %s %d: %w", normalized, tmdbID, err)
	}
	return nil
}

type requestListResponse struct {
	PageInfo struct {
		Pages int `json:"pages"`
		Page  int `json:"page"`
	} `json:"pageInfo"`
	Results []struct {
		Media struct {
			TMDBID    int    `json:"tmdbId"`
			MediaType string `json:"mediaType"`
		} `json:"media"`
	} `json:"results"`
}

// Requested returns the set of media already requested on the instance,
// walking every page of the request list.
func (c *Client) Requested(ctx context.Context) (map[MediaKey]struct{}, error) {
	requested := make(map[MediaKey]struct{})

	for skip := 0; ; skip += requestPageSize {
		url := fmt.Sprintf("%s/api/v1/request?take=%d&skip=%d&filter=all", c.baseURL, requestPageSize, skip)

		var page requestListResponse
		if err := c.api.GetJSON(ctx, url, c.headers(), &page); err != nil {
			return nil, fmt.Errorf("jellyseerr list requests: %w", err)
		}

		for _, result := range page.Results {
			requested[MediaKey{Type: result.Media.MediaType, TMDBID: result.Media.TMDBID}] = struct{}{}
		}

		if len(page.Results) < requestPageSize {
			break
		}
	}

	logrus.Debugf("[JELLYSEERR] found %d already requested items", len(requested))
	return requested, nil
}
