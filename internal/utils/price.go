package utils

import "strconv"

// FormatVND renders an amount as Vietnamese currency, with dot thousand
// separators and the đ suffix: 1250000 -> "1.250.000đ".
func FormatVND(amount int64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	formatted := string(out) + "đ"
	if negative {
		return "-" + formatted
	}
	return formatted
}
