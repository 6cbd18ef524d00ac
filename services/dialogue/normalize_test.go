package dialogue

import "testing"

func TestNormalizeTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"19:00", "7:00 PM"},
		{"7 pm", "7:00 PM"},
		{"7 PM", "7:00 PM"},
		{"7:05 a.m.", "7:05 AM"},
		{"7:05 p.m.", "7:05 PM"},
		{"0:30", "12:30 AM"},
		{"12:15", "12:15 PM"},
		{"11:59", "11:59 AM"},
		{"garbage", "garbage"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeTime(tc.in); got != tc.want {
			t.Errorf("NormalizeTime(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{"123-456-7890", "000-000-0000"}
	for _, p := range valid {
		if !ValidPhone(p) {
			t.Errorf("expected %q to be a valid phone", p)
		}
	}
	invalid := []string{"1234567890", "123-45-6789", "123-456-78901", "abc-def-ghij", ""}
	for _, p := range invalid {
		if ValidPhone(p) {
			t.Errorf("expected %q to be an invalid phone", p)
		}
	}
}

func TestValidTime(t *testing.T) {
	valid := []string{"7 PM", "7:00 PM", "7:00 pm", "12:30 AM"}
	for _, v := range valid {
		if !ValidTime(v) {
			t.Errorf("expected %q to be a valid time", v)
		}
	}
	invalid := []string{"19:00", "7", "noon", ""}
	for _, v := range invalid {
		if ValidTime(v) {
			t.Errorf("expected %q to be an invalid time", v)
		}
	}
}
