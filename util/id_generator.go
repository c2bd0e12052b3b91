package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	Alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	SlugLength   = 5
	UserIDLength = 10
)

// GenerateSlug returns an independent random slug. Every call draws fresh
// bytes from crypto/rand.
func GenerateSlug() (string, error) {
	return gonanoid.Generate(Alphabet, SlugLength)
}

func GenerateUserID() (string, error) {
	return gonanoid.Generate(Alphabet, UserIDLength)
}
