package models

import "testing"

func TestMaskName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"typical", "Nguyen Van A", "N***********"},
		{"two chars", "An", "**"},
		{"one char", "A", "*"},
		{"empty", "", ""},
		{"three chars", "Huy", "H**"},
		{"unicode", "Hướng", "H****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskName(tt.in); got != tt.want {
				t.Errorf("MaskName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReviewDisplayName(t *testing.T) {
	user := &User{FullName: "Tran Thi B"}

	open := Review{User: user}
	if got := open.DisplayName(); got != "Tran Thi B" {
		t.Errorf("DisplayName() = %q", got)
	}

	anon := Review{User: user, IsAnonymous: true}
	if got := anon.DisplayName(); got != "T*********" {
		t.Errorf("anonymous DisplayName() = %q", got)
	}

	missing := Review{}
	if got := missing.DisplayName(); got != "" {
		t.Errorf("DisplayName() without user = %q", got)
	}
}
