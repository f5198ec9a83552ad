package parser

import "strconv"

func parseFloat(lexeme string) (float64, error) {
	return strconv.ParseFloat(lexeme, 64)
}
