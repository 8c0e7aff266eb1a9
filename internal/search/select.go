package search

import (
	"net/http"

	"github.com/ppiankov/draftsmith/internal/model"
)

type backendDescriptor struct {
	name       string
	configured func(model.SearchConfig) bool
	build      func(model.SearchConfig, *http.Client) Backend
}

// backends is the priority order: the first configured entry wins
var backends = []backendDescriptor{
	{
		name:       "tavily",
		configured: func(c model.SearchConfig) bool { return c.TavilyAPIKey != "" },
		build: func(c model.SearchConfig, hc *http.Client) Backend {
			return NewTavilyBackend(c.TavilyAPIKey, c.TavilyBaseURL, hc)
		},
	},
	{
		name:       "serper",
		configured: func(c model.SearchConfig) bool { return c.SerperAPIKey != "" },
		build: func(c model.SearchConfig, hc *http.Client) Backend {
			return NewSerperBackend(c.SerperAPIKey, c.SerperBaseURL, hc)
		},
	},
}

// SelectBackend returns the highest-priority configured backend, or nil
// when no search credentials are present
func SelectBackend(cfg model.SearchConfig, httpClient *http.Client) Backend {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	for _, d := range backends {
		if d.configured(cfg) {
			return d.build(cfg, httpClient)
		}
	}
	return nil
}
