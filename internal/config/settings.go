package config

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goatkit/kbgen/internal/kberrors"
)

const (
	DefaultSettingsModule = "ai_kb_generator"
	DefaultModel          = "gemini-2.5-flash"
	DefaultRetentionDays  = 31
	DefaultMinReplies     = 2

	// ProductionEndpoint is used unless api_url_override is set.
	ProductionEndpoint = "https://deploymance.com/api/addon/kb-generator"
	endpointPath       = "/api/addon/kb-generator"
)

// Models lists the selectable generation models.
var Models = []string{
	"gemini-2.5-flash",
	"gemini-2.5-pro",
	"gemini-2.0-flash",
	"gemini-2.5-flash-lite",
}

// Setting names as stored by the host platform.
const (
	SettingLicenseKey      = "license_key"
	SettingGeminiAPIKey    = "gemini_api_key"
	SettingGeminiModel     = "gemini_model"
	SettingRetentionDays   = "retention_days"
	SettingAutoQueueClosed = "auto_queue_closed"
	SettingMinReplies      = "min_replies"
	SettingAPIURLOverride  = "api_url_override"
	SettingRenderMarkdown  = "render_markdown"
)

// AddonSettings is the addon configuration for one request. It is loaded
// once per request and handed to each component explicitly.
type AddonSettings struct {
	LicenseKey      string
	GeminiAPIKey    string
	GeminiModel     string
	RetentionDays   int
	AutoQueueClosed bool
	MinReplies      int
	APIURLOverride  string
	RenderMarkdown  bool
	// SystemURL is the platform's public URL; its host is the license domain.
	SystemURL string
	// RequestHost is the Host header of the current admin request, used
	// for the license domain when SystemURL is empty.
	RequestHost string
}

// Normalize replaces out-of-range values with defaults.
func (s AddonSettings) Normalize() AddonSettings {
	s.LicenseKey = strings.TrimSpace(s.LicenseKey)
	s.GeminiAPIKey = strings.TrimSpace(s.GeminiAPIKey)
	s.APIURLOverride = strings.TrimSpace(s.APIURLOverride)
	if !IsKnownModel(s.GeminiModel) {
		s.GeminiModel = DefaultModel
	}
	if s.RetentionDays <= 0 {
		s.RetentionDays = DefaultRetentionDays
	}
	if s.MinReplies < 0 {
		s.MinReplies = 0
	}
	return s
}

// Merge overlays stored setting rows on s. Unknown keys are ignored and
// unparsable numbers keep the current value.
func (s AddonSettings) Merge(rows map[string]string) AddonSettings {
	for key, raw := range rows {
		value := strings.TrimSpace(raw)
		switch key {
		case SettingLicenseKey:
			s.LicenseKey = value
		case SettingGeminiAPIKey:
			s.GeminiAPIKey = value
		case SettingGeminiModel:
			if value != "" {
				s.GeminiModel = value
			}
		case SettingRetentionDays:
			if n, err := strconv.Atoi(value); err == nil {
				s.RetentionDays = n
			}
		case SettingAutoQueueClosed:
			s.AutoQueueClosed = ParseToggle(value)
		case SettingMinReplies:
			if n, err := strconv.Atoi(value); err == nil {
				s.MinReplies = n
			}
		case SettingAPIURLOverride:
			s.APIURLOverride = value
		case SettingRenderMarkdown:
			s.RenderMarkdown = ParseToggle(value)
		}
	}
	return s.Normalize()
}

// ParseToggle reads a yes/no setting as stored by the host platform.
func ParseToggle(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes", "true", "1":
		return true
	}
	return false
}

// IsKnownModel reports whether name is a selectable model.
func IsKnownModel(name string) bool {
	for _, m := range Models {
		if m == name {
			return true
		}
	}
	return false
}

// Endpoint returns the generation endpoint URL.
func (s AddonSettings) Endpoint() string {
	if s.APIURLOverride == "" {
		return ProductionEndpoint
	}
	return strings.TrimRight(s.APIURLOverride, "/") + endpointPath
}

// RequireGenerationKeys fails when the license or AI provider key is missing.
func (s AddonSettings) RequireGenerationKeys() error {
	if s.LicenseKey == "" {
		return kberrors.Configuration("settings", "Deploymance License Key is not configured.")
	}
	if s.GeminiAPIKey == "" {
		return kberrors.Configuration("settings", "Gemini API Key is not configured.")
	}
	return nil
}

// Domain returns the domain the license is bound to: the host of
// SystemURL when set, else the request's Host header.
func (s AddonSettings) Domain() (string, error) {
	if s.SystemURL != "" {
		if u, err := url.Parse(s.SystemURL); err == nil && u.Hostname() != "" {
			return u.Hostname(), nil
		}
	}
	if host := strings.TrimSpace(s.RequestHost); host != "" {
		return host, nil
	}
	return "", kberrors.Configuration("settings", "Could not determine platform domain.")
}
