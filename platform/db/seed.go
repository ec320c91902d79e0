package db

import (
	"errors"
	"log/slog"

	"hacklab/platform/config"

	"gorm.io/gorm"
)

// SeedAdmin creates the configured admin account if no user holds the admin
// email or username yet. The password arrives already hashed.
func SeedAdmin(conf *config.ConfigSettings, hashedPassword string) error {
	var existing UserSchema
	result := db.Table("user_schemas").
		Where("email = ? OR username = ?", conf.AuthSettings.AdminEmail, conf.AuthSettings.AdminUsername).
		First(&existing)
	if result.Error == nil {
		slog.Info("Admin user already exists", "email", existing.Email)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	admin := UserSchema{
		Email:          conf.AuthSettings.AdminEmail,
		Username:       conf.AuthSettings.AdminUsername,
		HashedPassword: hashedPassword,
		Role:           "admin",
		IsActive:       true,
	}
	if _, err := CreateUser(admin); err != nil {
		return err
	}
	slog.Info("Default admin user created", "email", conf.AuthSettings.AdminEmail)
	return nil
}

// SeedChallenges loads the built-in catalogue on first start. An existing
// catalogue is left alone so admin edits survive restarts.
func SeedChallenges(conf *config.ConfigSettings) error {
	count, err := CountChallenges(false)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("Challenges already exist", "count", count)
		return nil
	}

	challenges := DefaultChallenges(conf.MiscSettings.Points)
	for _, challenge := range challenges {
		if _, err := CreateChallenge(challenge); err != nil {
			return err
		}
	}
	slog.Info("Initialized default challenges", "count", len(challenges))
	return nil
}

// SeedAds loads the configured ad slots on first start.
func SeedAds(conf *config.ConfigSettings) error {
	count, err := CountAds()
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("Ads already exist", "count", count)
		return nil
	}

	for _, ad := range conf.Ad {
		seeded := AdSchema{Position: ad.Position, Content: ad.Content, IsActive: true}
		if _, err := CreateAd(seeded); err != nil {
			return err
		}
	}
	slog.Info("Initialized default ads", "count", len(conf.Ad))
	return nil
}

// DefaultChallenges is the built-in 15-challenge catalogue. IDs are fixed and
// match the validation rules keyed off them.
func DefaultChallenges(points int) []ChallengeSchema {
	challenges := []ChallengeSchema{
		{
			ID:           1,
			Title:        "Bypass the Login",
			Slug:         "bypass-login",
			Category:     "Authentication",
			Description:  "Can you bypass this login form? Sometimes the logic isn't as secure as it appears.",
			Difficulty:   "easy",
			SolutionType: "input",
			FrontendHint: "Try different combinations of username and password. Look for logical flaws.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"username", "password"},
				"submit_endpoint": "/api/challenges/1/submit",
			},
		},
		{
			ID:           2,
			Title:        "SQL Injection",
			Slug:         "sql-injection",
			Category:     "SQLi",
			Description:  "This search form looks vulnerable to SQL injection. Can you extract data from another table?",
			Difficulty:   "medium",
			SolutionType: "input",
			FrontendHint: "Try using UNION SELECT to extract data from other tables.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"input"},
				"placeholder":     "Search for products...",
				"submit_endpoint": "/api/challenges/2/submit",
			},
		},
		{
			ID:           3,
			Title:        "Reflected XSS",
			Slug:         "reflected-xss",
			Category:     "XSS",
			Description:  "This page reflects user input without proper sanitization. Can you inject a script?",
			Difficulty:   "medium",
			SolutionType: "input",
			FrontendHint: "Inject JavaScript that would run in the victim's browser.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"payload"},
				"submit_endpoint": "/api/challenges/3/submit",
			},
		},
		{
			ID:           4,
			Title:        "Hidden in the Cookie",
			Slug:         "cookie-manipulation",
			Category:     "Cookie Manipulation",
			Description:  "This application uses cookies to determine user privileges. Can you become an admin?",
			Difficulty:   "easy",
			SolutionType: "cookie",
			FrontendHint: "Check your browser's developer tools and modify the cookie value.",
			FrontendConfig: map[string]any{
				"default_cookie":  "user_role=guest",
				"submit_endpoint": "/api/challenges/4/submit",
			},
		},
		{
			ID:           5,
			Title:        "Guess the Admin Panel",
			Slug:         "admin-panel-discovery",
			Category:     "Obscurity",
			Description:  "There's a hidden admin panel somewhere on this site. Can you find it?",
			Difficulty:   "easy",
			SolutionType: "path",
			FrontendHint: "Try common admin paths or use directory enumeration techniques.",
			FrontendConfig: map[string]any{
				"submit_endpoint": "/api/challenges/5/submit",
			},
		},
		{
			ID:           6,
			Title:        "Never Trust the Client",
			Slug:         "hidden-field-tampering",
			Category:     "Access Control",
			Description:  "The signup form decides your privileges with a hidden field. Client-side validation is not validation.",
			Difficulty:   "easy",
			SolutionType: "input",
			FrontendHint: "Inspect the form. What does the hidden role field default to?",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"role"},
				"submit_endpoint": "/api/challenges/6/submit",
			},
		},
		{
			ID:           7,
			Title:        "Somebody Else's Profile",
			Slug:         "idor",
			Category:     "Access Control",
			Description:  "Your profile lives at /profile?user_id=42. What about the other numbers?",
			Difficulty:   "medium",
			SolutionType: "input",
			FrontendHint: "The first account created on any platform is usually the interesting one.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"user_id"},
				"submit_endpoint": "/api/challenges/7/submit",
			},
		},
		{
			ID:           8,
			Title:        "Open Redirect",
			Slug:         "open-redirect",
			Category:     "Redirects",
			Description:  "The login page accepts a ?next= target and doesn't check where it points. Send a victim somewhere they don't expect.",
			Difficulty:   "medium",
			SolutionType: "input",
			FrontendHint: "The whitelist only checks the beginning of the URL.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"url"},
				"submit_endpoint": "/api/challenges/8/submit",
			},
		},
		{
			ID:           9,
			Title:        "Leaky Headers",
			Slug:         "leaky-headers",
			Category:     "Information Disclosure",
			Description:  "This challenge's pages reveal more than they should. Look beyond the body.",
			Difficulty:   "easy",
			SolutionType: "header",
			FrontendHint: "Open the network tab and read the response headers.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"header"},
				"submit_endpoint": "/api/challenges/9/submit",
			},
		},
		{
			ID:           10,
			Title:        "None Shall Sign",
			Slug:         "jwt-none",
			Category:     "Authentication",
			Description:  "The API trusts any JWT it can parse. Forge a token it will accept without a signature.",
			Difficulty:   "hard",
			SolutionType: "input",
			FrontendHint: "Some JWT libraries accept the \"none\" algorithm. What would such a header look like?",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"token"},
				"submit_endpoint": "/api/challenges/10/submit",
			},
		},
		{
			ID:           11,
			Title:        "Upload Filter Bypass",
			Slug:         "upload-filter-bypass",
			Category:     "File Upload",
			Description:  "The avatar upload only accepts images. Or does it? Name a file that sneaks code past the filter.",
			Difficulty:   "medium",
			SolutionType: "input",
			FrontendHint: "The filter only looks at the final extension.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"filename"},
				"submit_endpoint": "/api/challenges/11/submit",
			},
		},
		{
			ID:           12,
			Title:        "Robots Know Everything",
			Slug:         "robots-disclosure",
			Category:     "Information Disclosure",
			Description:  "Crawlers are told to stay away from the interesting parts. You are not a crawler.",
			Difficulty:   "easy",
			SolutionType: "path",
			FrontendHint: "Every site has a file that lists what search engines should skip.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"path"},
				"submit_endpoint": "/api/challenges/12/submit",
			},
		},
		{
			ID:           13,
			Title:        "Predictable Tokens",
			Slug:         "predictable-tokens",
			Category:     "Authentication",
			Description:  "Password reset tokens here are not exactly random. Yours was 100000. Guess the next one.",
			Difficulty:   "medium",
			SolutionType: "input",
			FrontendHint: "Sequential counters make terrible secrets.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"token"},
				"submit_endpoint": "/api/challenges/13/submit",
			},
		},
		{
			ID:           14,
			Title:        "CSP Bypass",
			Slug:         "csp-bypass",
			Category:     "XSS",
			Description:  "This page ships a Content-Security-Policy, but it allows something it shouldn't. Exploit it.",
			Difficulty:   "hard",
			SolutionType: "input",
			FrontendHint: "Check the policy this challenge's pages are served with. One directive is dangerously loose.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"payload"},
				"submit_endpoint": "/api/challenges/14/submit",
			},
		},
		{
			ID:           15,
			Title:        "Hardcoded Secrets",
			Slug:         "hardcoded-secrets",
			Category:     "Secrets",
			Description:  "The frontend bundle talks to a payment API. Developers left something in the source they shouldn't have.",
			Difficulty:   "easy",
			SolutionType: "input",
			FrontendHint: "Read the JavaScript. Search for keys that look live.",
			FrontendConfig: map[string]any{
				"form_fields":     []any{"api_key"},
				"submit_endpoint": "/api/challenges/15/submit",
			},
		},
	}

	// points and activation are uniform across the built-in catalogue
	for i := range challenges {
		challenges[i].Points = points
		challenges[i].IsActive = true
	}
	return challenges
}
