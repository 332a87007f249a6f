package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type YouTubeClient struct {
	apiKey    string
	searchURL string
	http      *http.Client
}

func NewYouTubeClient(apiKey, searchURL string) *YouTubeClient {
	return &YouTubeClient{
		apiKey:    apiKey,
		searchURL: searchURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *YouTubeClient) Search(ctx context.Context, query string, limit int) ([]MediaDescriptor, error) {
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	val := url.Values{}
	val.Set("part", "snippet")
	val.Set("type", "video")
	val.Set("maxResults", fmt.Sprint(limit))
	val.Set("q", query)
	val.Set("key", c.apiKey)

	var body ytSearchResponse
	if err := c.getJSON(ctx, c.searchURL+"?"+val.Encode(), &body); err != nil {
		return nil, err
	}

	out := make([]MediaDescriptor, 0, len(body.Items))
	var videoIDs []string

	for _, it := range body.Items {
		if it.ID.VideoID == "" {
			continue
		}
		thumbs := it.Snippet.Thumbnails
		thumb := thumbs.High.URL
		if thumb == "" {
			thumb = thumbs.Medium.URL
		}
		if thumb == "" {
			thumb = thumbs.Default.URL
		}

		out = append(out, MediaDescriptor{
			ID:        it.ID.VideoID,
			Kind:      "youtube",
			Title:     it.Snippet.Title,
			Thumbnail: thumb,
			// A video only loses embeddable when the details call says so.
			Embeddable: true,
		})
		videoIDs = append(videoIDs, it.ID.VideoID)
	}

	if len(videoIDs) > 0 {
		details, err := c.fetchDetails(ctx, videoIDs)
		if err == nil {
			for i := range out {
				if d, ok := details[out[i].ID]; ok {
					out[i].DurationSec = d.durationSec
					out[i].Views = d.views
					out[i].Embeddable = d.embeddable
				}
			}
		} else {
			// Results are still usable without duration/views.
			log.Printf("tunedeck: youtube details: %v", err)
		}
	}

	return out, nil
}

type ytVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
		Status struct {
			Embeddable *bool `json:"embeddable"`
		} `json:"status"`
	} `json:"items"`
}

type videoDetails struct {
	durationSec int
	views       int64
	embeddable  bool
}

func (c *YouTubeClient) fetchDetails(ctx context.Context, ids []string) (map[string]videoDetails, error) {
	val := url.Values{}
	val.Set("part", "contentDetails,statistics,status")
	val.Set("id", strings.Join(ids, ","))
	val.Set("key", c.apiKey)

	var body ytVideosResponse
	if err := c.getJSON(ctx, c.videosURL()+"?"+val.Encode(), &body); err != nil {
		return nil, err
	}

	details := make(map[string]videoDetails, len(body.Items))
	for _, item := range body.Items {
		views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		details[item.ID] = videoDetails{
			durationSec: parseISO8601Duration(item.ContentDetails.Duration),
			views:       views,
			embeddable:  item.Status.Embeddable == nil || *item.Status.Embeddable,
		}
	}
	return details, nil
}

// videosURL derives the videos endpoint from the configured search endpoint
// so tests and the real API both resolve under the same host.
func (c *YouTubeClient) videosURL() string {
	if strings.HasSuffix(c.searchURL, "/search") {
		return strings.TrimSuffix(c.searchURL, "/search") + "/videos"
	}
	return "https://www.googleapis.com/youtube/v3/videos"
}

func (c *YouTubeClient) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("youtube status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

var durationRe = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

func parseISO8601Duration(duration string) int {
	matches := durationRe.FindStringSubmatch(duration)
	if len(matches) < 4 {
		return 0
	}

	var h, m, s int
	fmt.Sscanf(matches[1], "%d", &h)
	fmt.Sscanf(matches[2], "%d", &m)
	fmt.Sscanf(matches[3], "%d", &s)

	return h*3600 + m*60 + s
}
