// Package password generates the throwaway passwords used when
// creating hosted addon configurations on behalf of the user.
package password

import "crypto/rand"

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"

// Generate returns a random password of the given length. Length 0
// selects the default of 16.
func Generate(length int) string {
	if length <= 0 {
		length = 16
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = charset[int(b)%len(charset)]
	}
	return string(buf)
}
