package service

import (
	"context"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/kberrors"
	"github.com/goatkit/kbgen/internal/repository"
)

// SettingsService builds the per-request addon settings.
type SettingsService struct {
	repo     repository.SettingsRepository
	defaults config.AddonSettings
	module   string
}

// NewSettingsService creates a settings service. defaults come from the
// service configuration; stored host settings override them.
func NewSettingsService(repo repository.SettingsRepository, defaults config.AddonSettings, module string) *SettingsService {
	if module == "" {
		module = config.DefaultSettingsModule
	}
	return &SettingsService{repo: repo, defaults: defaults, module: module}
}

// Load returns the settings for one request.
func (s *SettingsService) Load(ctx context.Context, requestHost string) (config.AddonSettings, error) {
	const op = "settings.Load"

	rows, err := s.repo.AddonSettings(ctx, s.module)
	if err != nil {
		return config.AddonSettings{}, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	settings := s.defaults.Merge(rows)

	systemURL, err := s.repo.SystemURL(ctx)
	if err != nil {
		return config.AddonSettings{}, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}
	if systemURL != "" {
		settings.SystemURL = systemURL
	}
	settings.RequestHost = requestHost

	return settings, nil
}
