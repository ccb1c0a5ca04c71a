// Package rooms декодирует подписи аудиторий из расписаний и строит по ним
// индекс занятости.
package rooms

import (
	"errors"
	"fmt"
	"strings"
)

const (
	unassignedRoom = "."
	legacyR47      = "R47"
	mergedR46      = "R46"
)

var ErrMalformedRoom = errors.New("malformed merged room label")

// Decode переводит сырую подпись аудитории в канонические идентификаторы.
//
// "." означает отсутствие аудитории, "R47" объединена с "R46", а запись
// "109-8" бронирует две аудитории: 109 и 108 (суффикс заменяет последние
// символы префикса с выравниванием вправо). Некорректная запись со знаком
// "-" считается одной непрозрачной аудиторией.
func Decode(raw string) []string {
	switch raw {
	case unassignedRoom:
		return nil
	case legacyR47:
		return []string{mergedR46}
	}

	if !strings.Contains(raw, "-") {
		return []string{raw}
	}

	first, second, err := ParseMerged(raw)
	if err != nil {
		return []string{raw}
	}
	return []string{first, second}
}

// ParseMerged разбирает запись "<prefix>-<suffix>".
// Ровно один дефис, обе части непусты, суффикс не длиннее префикса.
func ParseMerged(raw string) (string, string, error) {
	prefix, suffix, ok := strings.Cut(raw, "-")
	if !ok {
		return "", "", fmt.Errorf("%w: %q has no dash", ErrMalformedRoom, raw)
	}
	if strings.Contains(suffix, "-") {
		return "", "", fmt.Errorf("%w: %q has more than one dash", ErrMalformedRoom, raw)
	}
	if prefix == "" || suffix == "" {
		return "", "", fmt.Errorf("%w: %q has an empty side", ErrMalformedRoom, raw)
	}

	p := []rune(prefix)
	s := []rune(suffix)
	if len(s) > len(p) {
		return "", "", fmt.Errorf("%w: suffix of %q is longer than its prefix", ErrMalformedRoom, raw)
	}

	second := make([]rune, len(p))
	copy(second, p)
	copy(second[len(p)-len(s):], s)

	return prefix, string(second), nil
}
