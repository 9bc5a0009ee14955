package am

import (
	"strings"

	"github.com/teranos/graphminer/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Cache.Path) == "" {
		return errors.New("cache.path cannot be empty")
	}

	if c.HTTP.TimeoutSeconds <= 0 {
		return errors.Newf("http.timeout_seconds must be > 0, got %d", c.HTTP.TimeoutSeconds)
	}
	if c.HTTP.RequestsPerMinute <= 0 {
		return errors.Newf("http.requests_per_minute must be > 0, got %d", c.HTTP.RequestsPerMinute)
	}

	if c.Mine.Workers < 0 {
		return errors.Newf("mine.workers must be >= 0, got %d", c.Mine.Workers)
	}

	templates := []struct {
		key          string
		value        string
		placeholders []string
	}{
		{"networkrepository.download_url", c.NetworkRepository.DownloadURL, []string{"{type}", "{name}"}},
		{"networkrepository.page_url", c.NetworkRepository.PageURL, []string{"{name}"}},
		{"networkrepository.listing_url", c.NetworkRepository.ListingURL, nil},
		{"string.species_url", c.String.SpeciesURL, nil},
		{"string.links_url", c.String.LinksURL, []string{"{taxon}"}},
	}
	for _, tmpl := range templates {
		if tmpl.value == "" {
			return errors.Newf("%s cannot be empty", tmpl.key)
		}
		for _, placeholder := range tmpl.placeholders {
			if !strings.Contains(tmpl.value, placeholder) {
				return errors.WithHintf(
					errors.Newf("%s is missing the %s placeholder", tmpl.key, placeholder),
					"the default is %q", defaultTemplate(tmpl.key),
				)
			}
		}
	}

	if strings.Contains(c.String.SpeciesURL+c.String.LinksURL, "{version}") && c.String.Version == "" {
		return errors.New("string.version cannot be empty when URL templates use {version}")
	}

	return nil
}

func defaultTemplate(key string) string {
	switch key {
	case "networkrepository.download_url":
		return DefaultNetworkRepositoryDownloadURL
	case "networkrepository.page_url":
		return DefaultNetworkRepositoryPageURL
	case "string.links_url":
		return DefaultStringLinksURL
	}
	return ""
}

// Expand substitutes {key} placeholders in a URL template
func Expand(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
