package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/goatkit/kbgen/internal/apierrors"
	"github.com/goatkit/kbgen/internal/config"
)

const settingsKey = "kb_settings"

// SettingsLoader loads the addon settings for a request host.
type SettingsLoader interface {
	Load(ctx context.Context, requestHost string) (config.AddonSettings, error)
}

// AddonSettings loads the addon settings once per request.
func AddonSettings(loader SettingsLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := loader.Load(c.Request.Context(), c.Request.Host)
		if err != nil {
			apierrors.Respond(c, err)
			c.Abort()
			return
		}
		c.Set(settingsKey, s)
		c.Next()
	}
}

// Settings returns the settings loaded by AddonSettings.
func Settings(c *gin.Context) config.AddonSettings {
	if v, ok := c.Get(settingsKey); ok {
		if s, ok := v.(config.AddonSettings); ok {
			return s
		}
	}
	return config.AddonSettings{}
}
