package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	supportedDifficulties = []string{"easy", "medium", "hard"} // golang doesn't have constant arrays :/
	supportedAdPositions  = []string{"top", "bottom", "sidebar", "banner"}
)

type ConfigSettings struct {
	// General platform settings
	RequiredSettings RequiredConfig `toml:"RequiredSettings,omitempty" json:"RequiredSettings,omitempty"`

	// Authentication settings
	AuthSettings AuthConfig `toml:"AuthSettings,omitempty" json:"AuthSettings,omitempty"`

	// Optional settings
	SslSettings SslConfig `toml:"SslSettings,omitempty" json:"SslSettings,omitempty"`

	MiscSettings MiscConfig `toml:"MiscSettings,omitempty" json:"MiscSettings,omitempty"`

	// Restrict information
	UISettings UIConfig `toml:"UISettings,omitempty" json:"UISettings,omitempty"`

	Ad []Ad
}

type RequiredConfig struct {
	PlatformName string
	DBConnectURL string
	BindAddress  string
}

type AuthConfig struct {
	JWTSecret          string
	TokenExpiryMinutes int
	BcryptCost         int

	AdminEmail    string
	AdminUsername string
	AdminPassword string
	AdminToken    string
}

type SslConfig struct {
	HttpsCert string `toml:"httpscert,omitempty" json:"httpscert,omitempty"`
	HttpsKey  string `toml:"httpskey,omitempty" json:"httpskey,omitempty"`
}

type MiscConfig struct {
	Port    int
	LogFile string

	// Redis is optional; rate limiting is disabled without it
	RedisURL string

	// Rate limit settings
	RateLimitRequests      int
	RateLimitWindowSeconds int

	// Defaults for challenges
	Points int
}

// UIConfig controls what the player-facing API exposes. Admin endpoints are
// not affected by these toggles.
type UIConfig struct {
	AllowedOrigins       []string
	DisableLeaderboard   bool
	ShowSolveCounts      bool
	DisablePublicSignups bool
}

// Ad is a seedable advertisement slot. Ads created through the admin API live
// only in the database.
type Ad struct {
	Position string
	Content  string
}

// Load in a config
func (conf *ConfigSettings) SetConfig(path string) error {
	tempConf := ConfigSettings{}
	fileContent, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("configuration file (%s) not found: %w", path, err)
	}

	if md, err := toml.Decode(string(fileContent), &tempConf); err != nil {
		return err
	} else {
		for _, undecoded := range md.Undecoded() {
			slog.Warn("undecoded configuration key \"" + undecoded.String() + "\" will not be used.")
		}
	}

	// check the configuration and set defaults
	if err := checkConfig(&tempConf); err != nil {
		log.Fatalln("configuration file ("+path+") is invalid:", err)
	}

	// if we're here, the config is valid
	*conf = tempConf

	return nil
}

// general error checking
func checkConfig(conf *ConfigSettings) error {
	var errResult error

	// required settings

	if conf.RequiredSettings.PlatformName == "" {
		errResult = errors.Join(errResult, errors.New("platform name blank or not specified"))
	}

	if conf.RequiredSettings.DBConnectURL == "" {
		errResult = errors.Join(errResult, errors.New("no db connect url specified"))
	}

	if conf.RequiredSettings.BindAddress == "" {
		errResult = errors.Join(errResult, errors.New("no bind address specified"))
	}

	// auth settings

	if conf.AuthSettings.JWTSecret == "" {
		errResult = errors.Join(errResult, errors.New("no jwt secret specified"))
	}

	if conf.AuthSettings.TokenExpiryMinutes == 0 {
		conf.AuthSettings.TokenExpiryMinutes = 30
	}

	if conf.AuthSettings.TokenExpiryMinutes < 0 {
		errResult = errors.Join(errResult, errors.New("token expiry must be positive"))
	}

	if conf.AuthSettings.BcryptCost == 0 {
		conf.AuthSettings.BcryptCost = 12
	}

	if conf.AuthSettings.BcryptCost < 4 || conf.AuthSettings.BcryptCost > 31 {
		errResult = errors.Join(errResult, errors.New("bcrypt cost out of range"))
	}

	if conf.AuthSettings.AdminUsername == "" {
		conf.AuthSettings.AdminUsername = "admin"
	}

	if conf.AuthSettings.AdminEmail == "" {
		errResult = errors.Join(errResult, errors.New("no admin email specified"))
	}

	if conf.AuthSettings.AdminPassword == "" {
		errResult = errors.Join(errResult, errors.New("no admin password specified"))
	}

	// optional settings

	if conf.MiscSettings.Port == 0 {
		if conf.SslSettings != (SslConfig{}) {
			conf.MiscSettings.Port = 443
		} else {
			conf.MiscSettings.Port = 8000
		}
	}

	if conf.MiscSettings.Port < 1 || conf.MiscSettings.Port > 65535 {
		errResult = errors.Join(errResult, errors.New("port number invalid"))
	}

	if conf.MiscSettings.RateLimitRequests == 0 {
		conf.MiscSettings.RateLimitRequests = 100
	}

	if conf.MiscSettings.RateLimitWindowSeconds == 0 {
		conf.MiscSettings.RateLimitWindowSeconds = 60
	}

	if conf.MiscSettings.RateLimitRequests < 0 || conf.MiscSettings.RateLimitWindowSeconds < 0 {
		errResult = errors.Join(errResult, errors.New("rate limit settings must be positive"))
	}

	if conf.MiscSettings.Points == 0 {
		conf.MiscSettings.Points = 10
	}

	if conf.MiscSettings.Points < 1 || conf.MiscSettings.Points > 100 {
		errResult = errors.Join(errResult, errors.New("default challenge points must be between 1 and 100"))
	}

	for _, ad := range conf.Ad {
		if !slices.Contains(supportedAdPositions, ad.Position) {
			errResult = errors.Join(errResult, errors.New("ad position "+ad.Position+" is not one of "+strings.Join(supportedAdPositions, ", ")))
		}
		if ad.Content == "" {
			errResult = errors.Join(errResult, errors.New("ad for position "+ad.Position+" missing content"))
		}
	}

	if len(conf.UISettings.AllowedOrigins) == 0 {
		conf.UISettings.AllowedOrigins = []string{"*"}
	}

	return errResult
}

// ValidDifficulty reports whether d is a difficulty the platform accepts.
func ValidDifficulty(d string) bool {
	return slices.Contains(supportedDifficulties, d)
}

// Difficulties returns the fixed difficulty set, in display order.
func Difficulties() []string {
	return slices.Clone(supportedDifficulties)
}

// ValidAdPosition reports whether p is a known ad slot position.
func ValidAdPosition(p string) bool {
	return slices.Contains(supportedAdPositions, p)
}
