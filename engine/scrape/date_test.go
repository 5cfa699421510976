package scrape

import "testing"

func TestRecoverDate(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		fallback string
		want     string
	}{
		{
			name: "absolute date untouched",
			raw:  "Nov 12, 2024",
			want: "Nov 12, 2024",
		},
		{
			name:     "iso fallback parsed",
			raw:      "2 days ago",
			fallback: "2024-11-12T09:30:00Z",
			want:     "Nov 12, 2024",
		},
		{
			name:     "month first in prose",
			raw:      "5 hours ago",
			fallback: "Published on November 3, 2023 at noon",
			want:     "Nov 03, 2023",
		},
		{
			name:     "day first in prose",
			raw:      "1 hour ago",
			fallback: "Updated: 21 March 2022, 18:00 IST",
			want:     "Mar 21, 2022",
		},
		{
			name:     "unrecoverable keeps relative",
			raw:      "3 hours ago",
			fallback: "no date anywhere here",
			want:     "3 hours ago",
		},
		{
			name: "empty fallback keeps relative",
			raw:  "3 hours ago",
			want: "3 hours ago",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RecoverDate(tc.raw, tc.fallback); got != tc.want {
				t.Errorf("RecoverDate(%q, %q) = %q, want %q", tc.raw, tc.fallback, got, tc.want)
			}
		})
	}
}
