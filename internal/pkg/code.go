package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const sessionCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var sessionCodePattern = regexp.MustCompile(`^@[A-Z0-9]{5}_#$`)

func RandDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + x.Int64()))
	}
	return b.String(), nil
}

// NewSessionCode 生成 @XXXXX_# 形式的匿名代号
func NewSessionCode() (string, error) {
	var b strings.Builder
	b.WriteByte('@')
	max := big.NewInt(int64(len(sessionCodeAlphabet)))
	for i := 0; i < 5; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(sessionCodeAlphabet[x.Int64()])
	}
	b.WriteString("_#")
	return b.String(), nil
}

func IsSessionCode(s string) bool {
	return sessionCodePattern.MatchString(s)
}
