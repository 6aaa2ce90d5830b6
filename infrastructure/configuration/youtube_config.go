package configuration

import (
	"encoding/json"
	"errors"
	"os"
)

// YouTubeConfig holds the catalog credentials. An API key is enough for the
// public search endpoints; OAuth tokens are used instead when both are set.
type YouTubeConfig struct {
	APIKey       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AccessToken  string
	RefreshToken string
	Timeout      int
}

// HasOAuth reports whether a token pair is available.
func (c *YouTubeConfig) HasOAuth() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// GetYouTubeConfig assembles catalog credentials from config, environment and
// an optional token file.
func GetYouTubeConfig(tokenFile string) (*YouTubeConfig, error) {
	config := &YouTubeConfig{
		APIKey:       C.YouTube.APIKey,
		ClientID:     C.YouTube.ClientID,
		ClientSecret: C.YouTube.ClientSecret,
		RedirectURL:  getConfigValue(C.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL", ""),
		AccessToken:  os.Getenv("YOUTUBE_ACCESS_TOKEN"),
		RefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
		Timeout:      C.Upstream.TimeoutSeconds,
	}

	if !config.HasOAuth() && tokenFile != "" {
		if data, err := os.ReadFile(tokenFile); err == nil {
			var stored struct {
				AccessToken  string `json:"access_token"`
				RefreshToken string `json:"refresh_token"`
			}
			if jsonErr := json.Unmarshal(data, &stored); jsonErr == nil {
				if config.AccessToken == "" {
					config.AccessToken = stored.AccessToken
				}
				if config.RefreshToken == "" {
					config.RefreshToken = stored.RefreshToken
				}
			}
		}
	}

	if config.APIKey == "" && !config.HasOAuth() {
		return config, errors.New("youtube: neither YOUTUBE_API_KEY nor an OAuth token pair is configured")
	}
	return config, nil
}
