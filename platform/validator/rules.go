package validator

import (
	"encoding/base64"
	"strings"
)

// rules maps each challenge ID to its validation rule. The set is fixed at
// startup; there is exactly one rule per catalogue entry.
var rules = map[string]rule{
	"1":  bypassLogin,
	"2":  sqlInjection,
	"3":  reflectedXss,
	"4":  cookieManipulation,
	"5":  adminPanelDiscovery,
	"6":  hiddenFieldTampering,
	"7":  insecureDirectObjectReference,
	"8":  openRedirect,
	"9":  leakyHeaders,
	"10": jwtNoneAlgorithm,
	"11": uploadFilterBypass,
	"12": robotsDisclosure,
	"13": predictableTokens,
	"14": cspBypass,
	"15": hardcodedSecrets,
}

// Either field matching on its own is a valid solution; the form has two
// independent logic flaws, so this stays OR, not AND.
func bypassLogin(payload map[string]any) bool {
	return field(payload, "username") == "admin" || field(payload, "password") == "admin"
}

func sqlInjection(payload map[string]any) bool {
	input := strings.ToUpper(field(payload, "input"))
	if strings.Contains(input, "UNION") && strings.Contains(input, "SELECT") {
		return true
	}
	return strings.Contains(input, "' OR '1'='1") || strings.Contains(input, "' OR 1=1")
}

func reflectedXss(payload map[string]any) bool {
	return strings.Contains(strings.ToLower(field(payload, "payload")), "<script")
}

func cookieManipulation(payload map[string]any) bool {
	return field(payload, "cookie") == "admin"
}

func adminPanelDiscovery(payload map[string]any) bool {
	return field(payload, "path") == "/super/secret/flag"
}

func hiddenFieldTampering(payload map[string]any) bool {
	return field(payload, "role") == "admin"
}

// User record 1 belongs to the platform admin.
func insecureDirectObjectReference(payload map[string]any) bool {
	return field(payload, "user_id") == "1"
}

func openRedirect(payload map[string]any) bool {
	return strings.Contains(field(payload, "url"), "evil.example.com")
}

// The middleware leaks the flag in this header on challenge 9 pages.
func leakyHeaders(payload map[string]any) bool {
	return field(payload, "header") == "X-Flag"
}

// A forged token counts if its header segment decodes to an unsigned
// "alg": "none" declaration.
func jwtNoneAlgorithm(payload map[string]any) bool {
	header, _, found := strings.Cut(field(payload, "token"), ".")
	if !found {
		return false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(header)
	if err != nil {
		if decoded, err = base64.URLEncoding.DecodeString(header); err != nil {
			return false
		}
	}
	normalized := strings.ReplaceAll(strings.ToLower(string(decoded)), " ", "")
	return strings.Contains(normalized, `"alg":"none"`)
}

// The upload filter only inspects the final extension, so a double extension
// like shell.php.jpg slips through.
func uploadFilterBypass(payload map[string]any) bool {
	return strings.Contains(strings.ToLower(field(payload, "filename")), ".php.")
}

// Listed under Disallow in robots.txt.
func robotsDisclosure(payload map[string]any) bool {
	return field(payload, "path") == "/private/backups"
}

// Reset tokens are sequential; the one issued to the player is 100000.
func predictableTokens(payload map[string]any) bool {
	return field(payload, "token") == "100001"
}

func cspBypass(payload map[string]any) bool {
	return strings.Contains(strings.ToLower(field(payload, "payload")), "eval(")
}

func hardcodedSecrets(payload map[string]any) bool {
	return field(payload, "api_key") == "sk_live_4242424242424242"
}
