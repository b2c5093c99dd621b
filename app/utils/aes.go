package utils

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"hyperv-facade/app/logging"
)

// key 未配置token密钥时的默认AES-128密钥
var key = []byte("480055b0a0c4d10c")

// SetAesKey 使用token密钥派生AES-256密钥，secret为空时保持默认密钥
func SetAesKey(secret string) {
	if secret == "" {
		return
	}
	sum := sha256.Sum256([]byte(secret))
	key = sum[:]
}

// AesEncrypt CBC加密后base64编码，IV取密钥前16字节
func AesEncrypt(plaintext string) string {
	block, err := aes.NewCipher(key)
	if err != nil {
		logging.L().Errorf("加密失败，Key无效: %v", err)
		return ""
	}
	n := block.BlockSize()
	src := pad([]byte(plaintext), n)
	dst := make([]byte, len(src))
	cipher.NewCBCEncrypter(block, key[:n]).CryptBlocks(dst, src)
	return base64.StdEncoding.EncodeToString(dst)
}

// AesDecrypt 密文无效时返回空字符串
func AesDecrypt(ciphertext string) string {
	block, err := aes.NewCipher(key)
	if err != nil {
		logging.L().Errorf("解密失败，Key无效: %v", err)
		return ""
	}
	n := block.BlockSize()
	src, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(src) < n || len(src)%n != 0 {
		logging.L().Warn("解密失败，密文无效")
		return ""
	}
	dst := make([]byte, len(src))
	cipher.NewCBCDecrypter(block, key[:n]).CryptBlocks(dst, src)
	plain, ok := unpad(dst, n)
	if !ok {
		logging.L().Warn("解密失败，填充无效")
		return ""
	}
	return string(plain)
}

func pad(src []byte, blockSize int) []byte {
	n := blockSize - len(src)%blockSize
	return append(src, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(src []byte, blockSize int) ([]byte, bool) {
	if len(src) == 0 {
		return nil, false
	}
	n := int(src[len(src)-1])
	if n == 0 || n > blockSize || n > len(src) {
		return nil, false
	}
	for _, b := range src[len(src)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return src[:len(src)-n], true
}
