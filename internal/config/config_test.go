package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:         "development",
		Port:        "8000",
		JWTSecret:   "secure-secret-at-least-32-chars-long",
		JWTTTLHours: 24,
		DBPassword:  "secure-password",
		DBSSLMode:   "require",
		ImageStore:  "local",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateProductionSecrets(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = validConfig()
	c.Env = "production"
	c.DBPassword = "password"
	assert.Error(t, c.Validate())
}

func TestConfig_ValidateImageStore(t *testing.T) {
	c := validConfig()
	c.ImageStore = "s3"
	assert.Error(t, c.Validate(), "s3 store without bucket")

	c.S3Bucket = "recipes"
	assert.NoError(t, c.Validate())

	c.ImageStore = "ftp"
	assert.Error(t, c.Validate())
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer viper.Reset()
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer os.Unsetenv("MEDIA_URL_PREFIX")

	os.Setenv("APP_ENV", "test")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")
	os.Setenv("MEDIA_URL_PREFIX", "uploads/")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "/uploads", c.MediaURLPrefix)
	assert.Equal(t, "8000", c.Port)
	assert.Equal(t, 24*7, c.JWTTTLHours)
}
