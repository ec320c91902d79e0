package validator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// solvingPayloads holds a known-good submission for every catalogue entry.
var solvingPayloads = map[string]map[string]any{
	"1":  {"username": "admin"},
	"2":  {"input": "' UNION SELECT password FROM users--"},
	"3":  {"payload": "<script>alert(1)</script>"},
	"4":  {"cookie": "admin"},
	"5":  {"path": "/super/secret/flag"},
	"6":  {"role": "admin"},
	"7":  {"user_id": "1"},
	"8":  {"url": "https://evil.example.com/phish"},
	"9":  {"header": "X-Flag"},
	"10": {"token": "eyJhbGciOiJub25lIn0.eyJzdWIiOiIxIn0."},
	"11": {"filename": "shell.php.jpg"},
	"12": {"path": "/private/backups"},
	"13": {"token": "100001"},
	"14": {"payload": "eval(atob('YWxlcnQoMSk='))"},
	"15": {"api_key": "sk_live_4242424242424242"},
}

func TestEvaluateSolvesEveryChallenge(t *testing.T) {
	for id, payload := range solvingPayloads {
		t.Run(fmt.Sprintf("challenge %s", id), func(t *testing.T) {
			result, err := Evaluate(Challenge{ID: id, Points: 10}, payload)
			require.NoError(t, err)
			assert.True(t, result.Correct, "payload should solve challenge %s", id)
			assert.Equal(t, "Correct! Challenge solved.", result.Message)
			assert.Equal(t, 10, result.PointsEarned)
		})
	}
}

func TestEvaluateRejectsEmptyPayload(t *testing.T) {
	for id := range solvingPayloads {
		result, err := Evaluate(Challenge{ID: id, Points: 10}, map[string]any{})
		require.NoError(t, err)
		assert.False(t, result.Correct, "empty payload should never solve challenge %s", id)
		assert.Equal(t, "Incorrect. Keep trying!", result.Message)
		assert.Zero(t, result.PointsEarned)
	}
}

func TestEvaluateUnknownChallenge(t *testing.T) {
	_, err := Evaluate(Challenge{ID: "99", Points: 10}, map[string]any{})
	assert.ErrorIs(t, err, ErrUnknownChallenge)

	_, err = Evaluate(Challenge{ID: "", Points: 10}, map[string]any{})
	assert.ErrorIs(t, err, ErrUnknownChallenge)
}

func TestEvaluateCaseSensitivity(t *testing.T) {
	t.Run("login bypass requires lowercase admin", func(t *testing.T) {
		result, err := Evaluate(Challenge{ID: "1", Points: 10}, map[string]any{"username": "Admin"})
		require.NoError(t, err)
		assert.False(t, result.Correct)
	})

	t.Run("either login field works on its own", func(t *testing.T) {
		result, err := Evaluate(Challenge{ID: "1", Points: 10}, map[string]any{"password": "admin"})
		require.NoError(t, err)
		assert.True(t, result.Correct)
	})

	t.Run("cookie value is exact match", func(t *testing.T) {
		result, err := Evaluate(Challenge{ID: "4", Points: 10}, map[string]any{"cookie": "Admin"})
		require.NoError(t, err)
		assert.False(t, result.Correct)
	})

	t.Run("sql injection matching is case insensitive", func(t *testing.T) {
		result, err := Evaluate(Challenge{ID: "2", Points: 10}, map[string]any{"input": "union select 1,2"})
		require.NoError(t, err)
		assert.True(t, result.Correct)
	})

	t.Run("xss matching is case insensitive", func(t *testing.T) {
		result, err := Evaluate(Challenge{ID: "3", Points: 10}, map[string]any{"payload": "<SCRIPT>alert(1)</SCRIPT>"})
		require.NoError(t, err)
		assert.True(t, result.Correct)
	})
}

func TestEvaluateMistypedFields(t *testing.T) {
	// JSON numbers arrive as float64; a rule expecting a string must not panic
	// or accidentally match
	result, err := Evaluate(Challenge{ID: "7", Points: 10}, map[string]any{"user_id": float64(1)})
	require.NoError(t, err)
	assert.False(t, result.Correct)

	result, err = Evaluate(Challenge{ID: "6", Points: 10}, map[string]any{"role": []string{"admin"}})
	require.NoError(t, err)
	assert.False(t, result.Correct)
}

func TestJwtNoneDetection(t *testing.T) {
	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"raw url encoding", "eyJhbGciOiJub25lIn0.payload.", true},
		{"padded encoding", "eyJ0eXAiOiJKV1QiLCJhbGciOiJub25lIn0=.payload.", true},
		{"spaces inside header survive normalization", "eyJhbGciOiAibm9uZSJ9.payload.", true},
		{"signed token", "eyJhbGciOiJIUzI1NiJ9.payload.sig", false},
		{"no dot separator", "eyJhbGciOiJub25lIn0", false},
		{"garbage header", "!!!.payload.", false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Evaluate(Challenge{ID: "10", Points: 10}, map[string]any{"token": tc.token})
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Correct)
		})
	}
}

func TestUploadFilterBypass(t *testing.T) {
	solves := []string{"shell.php.jpg", "SHELL.PHP.PNG", "a.php.b"}
	misses := []string{"shell.php", "image.jpg", "php.jpg", "shell.jpg.php"}

	for _, name := range solves {
		result, err := Evaluate(Challenge{ID: "11", Points: 10}, map[string]any{"filename": name})
		require.NoError(t, err)
		assert.True(t, result.Correct, "%s should pass the filter", name)
	}
	for _, name := range misses {
		result, err := Evaluate(Challenge{ID: "11", Points: 10}, map[string]any{"filename": name})
		require.NoError(t, err)
		assert.False(t, result.Correct, "%s should not pass the filter", name)
	}
}

func TestKnownChallenge(t *testing.T) {
	for i := 1; i <= 15; i++ {
		assert.True(t, KnownChallenge(fmt.Sprint(i)))
	}
	assert.False(t, KnownChallenge("0"))
	assert.False(t, KnownChallenge("16"))
	assert.False(t, KnownChallenge("abc"))
}

func TestEvaluatePointsPropagation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		points := rapid.IntRange(1, 100).Draw(t, "points")
		result, err := Evaluate(Challenge{ID: "4", Points: points}, map[string]any{"cookie": "admin"})
		require.NoError(t, err)
		assert.Equal(t, points, result.PointsEarned, "earned points must equal the challenge value")
	})
}

// Evaluate is stateless, so repeated calls with the same inputs must agree.
func TestEvaluateDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		id := rapid.SampledFrom([]string{
			"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13", "14", "15",
		}).Draw(t, "id")
		key := rapid.SampledFrom([]string{
			"username", "password", "input", "payload", "cookie", "path", "role",
			"user_id", "url", "header", "token", "filename", "api_key",
		}).Draw(t, "key")
		value := rapid.String().Draw(t, "value")

		payload := map[string]any{key: value}
		first, err := Evaluate(Challenge{ID: id, Points: 10}, payload)
		require.NoError(t, err)
		second, err := Evaluate(Challenge{ID: id, Points: 10}, payload)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
