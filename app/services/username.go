package services

import (
	"context"
	"strconv"
	"strings"
	"unicode"
)

// TakenFunc reports whether a username is already in use.
type TakenFunc func(ctx context.Context, username string) (bool, error)

// UniqueUsername strips base down to lower-case ASCII letters and digits
// and appends 1, 2, ... until taken reports it free. An empty result falls
// back to "user".
func UniqueUsername(ctx context.Context, taken TakenFunc, base string) (string, error) {
	var b strings.Builder
	for _, r := range base {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	stem := b.String()
	if stem == "" {
		stem = "user"
	}

	candidate := stem
	for n := 1; ; n++ {
		used, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate = stem + strconv.Itoa(n)
	}
}
