package extract

import (
	"testing"
	"time"
)

func TestIsTodayAt(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.Local)

	cases := []struct {
		date string
		want bool
	}{
		{"היום", true},
		{"פורסם היום ב-12:30", true},
		{"15/03/24", true},
		{"15/3/24", true},
		{"15/03/2024", true},
		{"14/03/24", false},
		{"15/04/24", false},
		{"15/03/23", false},
		{"15/03/2023", false},
		{"32/03/24", false},
		{"15/13/24", false},
		{"yesterday", false},
		{"", false},
	}

	for _, c := range cases {
		got := isTodayAt(c.date, now)
		if got != c.want {
			t.Fatalf("isTodayAt(%q) = %v, want %v", c.date, got, c.want)
		}
	}
}
