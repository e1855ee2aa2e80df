package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPasswordAllFail(t *testing.T) {
	c := CheckPassword("abc")
	assert.False(t, c.MinLength)
	assert.False(t, c.Uppercase)
	assert.True(t, c.Lowercase)
	assert.False(t, c.Digit)
	assert.False(t, c.Special)
	assert.False(t, c.OK())
}

func TestCheckPasswordAllPass(t *testing.T) {
	c := CheckPassword("Abcdef1!")
	assert.True(t, c.MinLength)
	assert.True(t, c.Uppercase)
	assert.True(t, c.Lowercase)
	assert.True(t, c.Digit)
	assert.True(t, c.Special)
	assert.True(t, c.OK())
	assert.Empty(t, PasswordError(c))
}

func TestCheckPasswordSpecials(t *testing.T) {
	for _, r := range `!@#$%^&*(),.?":{}|<>` {
		c := CheckPassword("Abcdef1" + string(r))
		assert.True(t, c.Special, "rune %q should count as special", r)
	}
	assert.False(t, CheckPassword("Abcdefg1").Special)
	assert.False(t, CheckPassword("Abcdef1-").Special)
}

func TestPasswordErrorOrder(t *testing.T) {
	assert.Equal(t, "Password must be at least 8 characters long", PasswordError(CheckPassword("Ab1!")))
	assert.Equal(t, "Password must contain an uppercase letter", PasswordError(CheckPassword("abcdef1!")))
	assert.Equal(t, "Password must contain a lowercase letter", PasswordError(CheckPassword("ABCDEF1!")))
	assert.Equal(t, "Password must contain a digit", PasswordError(CheckPassword("Abcdefg!")))
	assert.Equal(t, "Password must contain a special character", PasswordError(CheckPassword("Abcdefg1")))
}
