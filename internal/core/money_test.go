package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"-12.50", "-12.5", true},
		{"+3", "3", true},
		{"1.005", "1.01", true}, // half away from zero
		{"-1.005", "-1.01", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"--1", "", false},
		{"-", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestEvalAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"12,50", "12.5", true},
		{"-5", "-5", true},
		{"12.50+3.20", "15.7", true},
		{"3*4.10", "12.3", true},
		{"100/3", "33.33", true},
		{"(10 - 2.5) * 2", "15", true},
		{"abc", "", false},
		{"5x", "", false},
		{"price * 2", "", false},
		{"1/0", "", false},
		{"2 > 1", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := EvalAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %s", tc.in, got)
		}
	}
}
