package model

import (
	"fmt"
	"strings"
)

// CohortYear год обучения (поток), у каждого своё недельное расписание
type CohortYear string

const (
	CohortA1 CohortYear = "A1"
	CohortA2 CohortYear = "A2"
	CohortA3 CohortYear = "A3"
)

// AllCohorts возвращает все потоки в каноническом порядке
func AllCohorts() []CohortYear {
	return []CohortYear{CohortA1, CohortA2, CohortA3}
}

// ParseCohortYear разбирает "A1".."A3" или "1".."3"
func ParseCohortYear(raw string) (CohortYear, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	switch value {
	case "A1", "1":
		return CohortA1, nil
	case "A2", "2":
		return CohortA2, nil
	case "A3", "3":
		return CohortA3, nil
	}
	return "", fmt.Errorf("%w: unknown cohort year %q", ErrInvalidParameter, raw)
}

// CohortFromNumber возвращает поток по номеру 1..3
func CohortFromNumber(n int) (CohortYear, error) {
	if n < 1 || n > 3 {
		return "", fmt.Errorf("%w: cohort number %d out of range", ErrInvalidParameter, n)
	}
	return AllCohorts()[n-1], nil
}

// Number возвращает номер потока (1..3), 0 для неизвестного значения
func (c CohortYear) Number() int {
	switch c {
	case CohortA1:
		return 1
	case CohortA2:
		return 2
	case CohortA3:
		return 3
	}
	return 0
}

func (c CohortYear) Valid() bool {
	return c.Number() != 0
}

func (c CohortYear) String() string {
	return string(c)
}
