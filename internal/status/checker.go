// Package status reports the health of the platform's dependencies.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

type State string

const (
	Healthy  State = "healthy"
	Degraded State = "degraded"
	Down     State = "down"
	Unknown  State = "unknown"
)

// Component is the health of one dependency
type Component struct {
	Name    string `json:"name"`
	Status  State  `json:"status"`
	Message string `json:"message"`
	Version string `json:"version,omitempty"`
}

// BuildInfo identifies the running build
type BuildInfo struct {
	SHA  string `json:"sha"`
	Time string `json:"time"`
	Beta bool   `json:"beta"`
}

// NewBuildInfo shortens sha to 7 characters, or "local" when unset.
// An empty build time is replaced with now.
func NewBuildInfo(sha, buildTime string, beta bool) BuildInfo {
	switch {
	case sha == "":
		sha = "local"
	case len(sha) > 7:
		sha = sha[:7]
	}
	if buildTime == "" {
		buildTime = time.Now().UTC().Format(time.RFC3339)
	}
	return BuildInfo{SHA: sha, Time: buildTime, Beta: beta}
}

type Report struct {
	Status     State       `json:"status"`
	Components []Component `json:"components"`
	Build      BuildInfo   `json:"build"`
	CheckedAt  time.Time   `json:"checked_at"`
}

// Pinger is a local dependency such as the database
type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	APIURL      string
	SupabaseURL string
	AnonKey     string
	Build       BuildInfo
}

type Checker struct {
	cfg    Config
	store  Pinger
	client *http.Client
}

// NewChecker builds a checker. store may be nil.
func NewChecker(cfg Config, store Pinger, client *http.Client) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.SupabaseURL = strings.TrimRight(cfg.SupabaseURL, "/")
	return &Checker{cfg: cfg, store: store, client: client}
}

// Check probes every dependency concurrently
func (c *Checker) Check(ctx context.Context) Report {
	checks := []func(context.Context) Component{c.checkAPI, c.checkSupabase}
	if c.store != nil {
		checks = append(checks, c.checkStore)
	}

	components := make([]Component, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			components[i] = check(gctx)
			return nil
		})
	}
	g.Wait()

	return Report{
		Status:     Overall(components),
		Components: components,
		Build:      c.cfg.Build,
		CheckedAt:  time.Now().UTC(),
	}
}

// Overall is healthy only when every component is
func Overall(components []Component) State {
	for _, comp := range components {
		if comp.Status != Healthy {
			return Degraded
		}
	}
	return Healthy
}

func (c *Checker) checkAPI(ctx context.Context) Component {
	comp := Component{Name: "api"}
	if c.cfg.APIURL == "" {
		comp.Status, comp.Message = Unknown, "API URL not configured"
		return comp
	}

	resp, err := c.get(ctx, c.cfg.APIURL+"/health", nil)
	if err != nil {
		comp.Status, comp.Message = Down, err.Error()
		return comp
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		comp.Status, comp.Message = Degraded, fmt.Sprintf("HTTP %d", resp.StatusCode)
		return comp
	}

	var body struct {
		Service string `json:"service"`
		Version string `json:"version"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	comp.Status, comp.Message, comp.Version = Healthy, "API is healthy", body.Version
	if body.Service != "" {
		comp.Message = body.Service
	}
	return comp
}

func (c *Checker) checkSupabase(ctx context.Context) Component {
	comp := Component{Name: "database"}
	if c.cfg.SupabaseURL == "" {
		comp.Status, comp.Message = Unknown, "Supabase URL not configured"
		return comp
	}

	resp, err := c.get(ctx, c.cfg.SupabaseURL+"/rest/v1/", map[string]string{"apikey": c.cfg.AnonKey})
	if err != nil {
		comp.Status, comp.Message = Down, err.Error()
		return comp
	}
	resp.Body.Close()

	// The REST root answers 400 without a table path.
	if (resp.StatusCode >= 200 && resp.StatusCode <= 299) || resp.StatusCode == http.StatusBadRequest {
		comp.Status, comp.Message = Healthy, "Database is accessible"
		return comp
	}
	comp.Status, comp.Message = Degraded, fmt.Sprintf("HTTP %d", resp.StatusCode)
	return comp
}

func (c *Checker) checkStore(ctx context.Context) Component {
	comp := Component{Name: "store"}
	if err := c.store.Ping(ctx); err != nil {
		comp.Status, comp.Message = Down, err.Error()
		return comp
	}
	comp.Status, comp.Message = Healthy, "Local store is accessible"
	return comp
}

func (c *Checker) get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.client.Do(req)
}
