package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/repository"
)

func TestSettingsServiceLoad(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	defaults := config.AddonSettings{
		GeminiModel:     config.DefaultModel,
		RetentionDays:   31,
		MinReplies:      2,
		AutoQueueClosed: true,
		SystemURL:       "https://fallback.example",
	}
	svc := NewSettingsService(repository.NewSettingsRepository(db), defaults, "")

	t.Run("defaults when nothing stored", func(t *testing.T) {
		s, err := svc.Load(ctx, "admin.example:8443")
		require.NoError(t, err)
		assert.Equal(t, config.DefaultModel, s.GeminiModel)
		assert.Equal(t, 2, s.MinReplies)
		assert.True(t, s.AutoQueueClosed)
		assert.Equal(t, "https://fallback.example", s.SystemURL)
		assert.Equal(t, "admin.example:8443", s.RequestHost)
	})

	rows := map[string]string{
		"license_key":       " LIC-1 ",
		"gemini_api_key":    "AIza",
		"gemini_model":      "gpt-4",
		"retention_days":    "abc",
		"auto_queue_closed": "",
		"min_replies":       "5",
	}
	for k, v := range rows {
		_, err := db.Exec(`INSERT INTO tbladdonmodules (module, setting, value) VALUES (?, ?, ?)`, config.DefaultSettingsModule, k, v)
		require.NoError(t, err)
	}
	_, err := db.Exec(`INSERT INTO tbladdonmodules (module, setting, value) VALUES ('other', 'min_replies', '9')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tblconfiguration (setting, value) VALUES ('SystemURL', 'https://billing.example.com/')`)
	require.NoError(t, err)

	t.Run("stored rows override defaults", func(t *testing.T) {
		s, err := svc.Load(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "LIC-1", s.LicenseKey)
		assert.Equal(t, "AIza", s.GeminiAPIKey)
		assert.Equal(t, config.DefaultModel, s.GeminiModel)
		assert.Equal(t, 31, s.RetentionDays)
		assert.False(t, s.AutoQueueClosed)
		assert.Equal(t, 5, s.MinReplies)
		assert.Equal(t, "https://billing.example.com/", s.SystemURL)

		domain, err := s.Domain()
		require.NoError(t, err)
		assert.Equal(t, "billing.example.com", domain)
	})
}
