package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdt-ict/portal/internal/shared"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"strong", "Str0ng!Pass", true},
		{"exactly eight", "Aa1!aaaa", true},
		{"too short", "short1!", false},
		{"short with all classes", "Sh0rt!", false},
		{"missing upper", "str0ng!pass", false},
		{"missing lower", "STR0NG!PASS", false},
		{"missing digit", "Strong!Pass", false},
		{"missing special", "Str0ngPass", false},
		{"special outside set", "Str0ng~Pass", false},
		{"empty", "", false},
		{"ascii upper after non-ascii upper", "ÄBCDEFGa1!", true},
		{"non-ascii upper only", "abcdefgÄ1!", false},
		{"non-ascii lower only", "ABCDEFGä1!", false},
		{"arabic-indic digit only", "Abcdefgh١!", false},
		{"non-ascii letters alongside classes", "Str0ng!Päss", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, shared.ErrValidation)
			assert.Equal(t, PasswordPolicyMessage, shared.UserSafeMessage(err))
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "scriptalert(1)/script", Sanitize("  <script>alert(1)</script> "))
	assert.Equal(t, "Ada", Sanitize("Ada"))
	assert.Equal(t, "", Sanitize(" <> "))
}

func TestSanitizeFieldsOnlyTouchesStrings(t *testing.T) {
	fields := map[string]any{
		"firstName": " <b>Ada</b> ",
		"age":       float64(36),
		"nested":    map[string]any{"x": "<y>"},
	}
	SanitizeFields(fields)
	assert.Equal(t, "bAda/b", fields["firstName"])
	assert.Equal(t, float64(36), fields["age"])
	assert.Equal(t, map[string]any{"x": "<y>"}, fields["nested"])
}

func TestHasherSaltsEachHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)
	second, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)

	assert.NotEqual(t, "Str0ng!Pass", first)
	assert.NotEqual(t, first, second)
	assert.True(t, h.Compare(first, "Str0ng!Pass"))
	assert.True(t, h.Compare(second, "Str0ng!Pass"))
	assert.False(t, h.Compare(first, "Wr0ng!Pass"))
}

func TestDefaultHasherUsesTenRounds(t *testing.T) {
	h := NewHasher(0)
	hash, err := h.Hash("Str0ng!Pass")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestHasherRejectsOverlongPassword(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}
	_, err := NewHasher(bcrypt.MinCost).Hash(string(long))
	require.ErrorIs(t, err, shared.ErrValidation)
}
