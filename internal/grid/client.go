// Package grid provides a minimal client for the GRID esports data
// platform: the central-data GraphQL endpoint and the file-download API.
package grid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const (
	centralDataURL  = "https://api-op.grid.gg/central-data/graphql"
	fileDownloadURL = "https://api.grid.gg/file-download"

	// titleID selects the game title in central-data filters.
	titleID = "6"
)

// Client is a minimal GRID API client.
type Client struct {
	apiKey string
	http   *http.Client

	// maxRetries bounds 429 backoff retries per request.
	maxRetries int
}

// NewClient returns a client authenticated with the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		http:       &http.Client{Timeout: 60 * time.Second},
		maxRetries: 5,
	}
}

// SeriesFile is one downloadable artifact of a series.
type SeriesFile struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	FileName    string `json:"fileName"`
	FullURL     string `json:"fullURL"`
}

// ListSeriesFiles returns the downloadable files for a series.
func (c *Client) ListSeriesFiles(seriesID string) ([]SeriesFile, error) {
	var out struct {
		Files []SeriesFile `json:"files"`
	}
	url := fmt.Sprintf("%s/list/%s", fileDownloadURL, seriesID)
	if err := c.getJSON(url, &out); err != nil {
		return nil, fmt.Errorf("list series files: %w", err)
	}
	return out.Files, nil
}

// DownloadFile streams a series file to outputPath.
func (c *Client) DownloadFile(fullURL, outputPath string) error {
	resp, err := c.doWithBackoff(fullURL)
	if err != nil {
		return fmt.Errorf("download %s: %w", fullURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: HTTP %d", fullURL, resp.StatusCode)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

// Team is a central-data team record.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Player is a central-data player record.
type Player struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

// FindTeam looks a team up by partial name match. Returns a nil team when
// nothing matches.
func (c *Client) FindTeam(name string) (*Team, error) {
	query := `
		query GetTeamId($teamFilter: TeamFilter!) {
		  teams(filter: $teamFilter, first: 1) {
		    edges { node { id name } }
		  }
		}`
	vars := map[string]any{
		"teamFilter": map[string]any{
			"titleId": titleID,
			"name":    map[string]string{"contains": name},
		},
	}
	var out struct {
		Teams struct {
			Edges []struct {
				Node Team `json:"node"`
			} `json:"edges"`
		} `json:"teams"`
	}
	if err := c.graphql(query, vars, &out); err != nil {
		return nil, fmt.Errorf("find team %q: %w", name, err)
	}
	if len(out.Teams.Edges) == 0 {
		return nil, nil
	}
	team := out.Teams.Edges[0].Node
	return &team, nil
}

// TeamRoster returns the players registered to a team.
func (c *Client) TeamRoster(teamID string) ([]Player, error) {
	query := `
		query GetTeamRoster($playerFilter: PlayerFilter!) {
		  players(filter: $playerFilter) {
		    edges { node { id nickname } }
		  }
		}`
	vars := map[string]any{
		"playerFilter": map[string]any{
			"titleId":      titleID,
			"teamIdFilter": map[string]string{"id": teamID},
		},
	}
	var out struct {
		Players struct {
			Edges []struct {
				Node Player `json:"node"`
			} `json:"edges"`
		} `json:"players"`
	}
	if err := c.graphql(query, vars, &out); err != nil {
		return nil, fmt.Errorf("team roster %s: %w", teamID, err)
	}
	players := make([]Player, 0, len(out.Players.Edges))
	for _, edge := range out.Players.Edges {
		players = append(players, edge.Node)
	}
	return players, nil
}

// graphql posts one query to central-data and decodes the data payload.
func (c *Client) graphql(query string, vars map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": vars,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, centralDataURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("central-data: HTTP %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("central-data: %s", envelope.Errors[0].Message)
	}
	return json.Unmarshal(envelope.Data, out)
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(url string, out any) error {
	resp, err := c.doWithBackoff(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// doWithBackoff GETs url, honoring Retry-After on 429 with capped
// exponential backoff.
func (c *Client) doWithBackoff(url string) (*http.Response, error) {
	delay := 2 * time.Second
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("x-api-key", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return resp, nil
		}

		sleep := delay
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				sleep = time.Duration(secs) * time.Second
			}
		}
		resp.Body.Close()
		time.Sleep(sleep)
		if delay *= 2; delay > 30*time.Second {
			delay = 30 * time.Second
		}
	}
}
