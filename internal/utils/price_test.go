package utils

import "testing"

func TestFormatVND(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0đ"},
		{999, "999đ"},
		{1_000, "1.000đ"},
		{25_990_000, "25.990.000đ"},
		{1_250_000, "1.250.000đ"},
		{100, "100đ"},
		{-50_000, "-50.000đ"},
	}

	for _, tt := range tests {
		if got := FormatVND(tt.amount); got != tt.want {
			t.Errorf("FormatVND(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}
