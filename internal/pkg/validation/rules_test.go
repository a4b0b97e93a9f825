package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPhone(t *testing.T) {
	for _, ok := range []string{"0912345678", "+84912345678", "0283 822 1234", "0387.123.456"} {
		assert.True(t, IsPhone(ok), ok)
	}
	for _, bad := range []string{"12345", "0112345678", "abc", ""} {
		assert.False(t, IsPhone(bad), bad)
	}
}

func TestIsClock(t *testing.T) {
	assert.True(t, IsClock("06:00"))
	assert.True(t, IsClock("23:59"))
	assert.False(t, IsClock("24:00"))
	assert.False(t, IsClock("6:00"))
}

func TestRegisterRules_UsesJSONNames(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	type req struct {
		OpeningTime string `json:"openingTime" validate:"omitempty,hhmm"`
		Phone       string `json:"phone" validate:"omitempty,vnphone"`
		MoveIn      string `json:"moveInDate" validate:"omitempty,isodate"`
	}

	require.NoError(t, v.Struct(req{OpeningTime: "07:30", Phone: "0912345678", MoveIn: "2025-01-31"}))

	err := v.Struct(req{OpeningTime: "7h30", MoveIn: "2025-02-30"})
	require.Error(t, err)
	verrs := err.(validator.ValidationErrors)
	require.Len(t, verrs, 2)
	assert.Equal(t, "openingTime", verrs[0].Field())
	assert.Equal(t, "moveInDate", verrs[1].Field())
}
