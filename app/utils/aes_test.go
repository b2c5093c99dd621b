package utils

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestAes_roundTrip(t *testing.T) {
	en := AesEncrypt("administrator@hyperv.local")
	assert.NotEmpty(t, en)
	assert.Equal(t, "administrator@hyperv.local", AesDecrypt(en))
}

func TestAes_customKey(t *testing.T) {
	old := key
	defer func() { key = old }()

	SetAesKey("9f1c2e7a4b")
	assert.Len(t, key, 32)
	en := AesEncrypt("p@ss")
	assert.Equal(t, "p@ss", AesDecrypt(en))
}

func TestAesDecrypt_invalid(t *testing.T) {
	assert.Equal(t, "", AesDecrypt("not-base64!"))
	assert.Equal(t, "", AesDecrypt("YWJj"))
}
