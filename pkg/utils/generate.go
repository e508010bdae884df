package utils

import (
	"strconv"
)

// SeatLetters are the seat letters of one row, in labeling order.
var SeatLetters = [...]string{"A", "B", "C", "D"}

// SeatPosition returns the row number and letter of the i-th seat (1-based):
// 1 → (1, "A"), 4 → (1, "D"), 5 → (2, "A").
func SeatPosition(i int) (int, string) {
	n := len(SeatLetters)
	return (i-1)/n + 1, SeatLetters[(i-1)%n]
}

// SeatLabel returns the label of the i-th seat (1-based): A1, B1, C1, D1, A2, ...
func SeatLabel(i int) string {
	row, letter := SeatPosition(i)
	return letter + strconv.Itoa(row)
}

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil || result < 1 {
		return defaultValue
	}

	return result
}
