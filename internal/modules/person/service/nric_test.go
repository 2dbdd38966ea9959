package service

import (
	"testing"
	"time"
)

func TestParseNRIC(t *testing.T) {
	cases := []struct {
		name   string
		nric   string
		dob    string
		gender string
	}{
		{"male 1990s", "900615-10-1234", "1990-06-15", "Male"},
		{"female 1990s", "851201-14-5677", "1985-12-01", "Female"},
		{"2000s century", "050310-08-4455", "2005-03-10", "Female"},
		{"boundary year 30", "300101-01-0002", "2030-01-01", "Male"},
		{"boundary year 31", "310101-01-0002", "1931-01-01", "Male"},
		{"no separators", "900615101234", "1990-06-15", "Male"},
		{"spaces tolerated", "900615 10 1234", "1990-06-15", "Male"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info := ParseNRIC(tc.nric)
			if info == nil {
				t.Fatalf("expected parse of %q to succeed", tc.nric)
			}
			want, _ := time.Parse("2006-01-02", tc.dob)
			if !info.DateOfBirth.Equal(want) {
				t.Errorf("dob = %s, want %s", info.DateOfBirth.Format("2006-01-02"), tc.dob)
			}
			if info.Gender != tc.gender {
				t.Errorf("gender = %s, want %s", info.Gender, tc.gender)
			}
		})
	}
}

func TestParseNRICMalformed(t *testing.T) {
	cases := []struct {
		name string
		nric string
	}{
		{"empty", ""},
		{"too short", "90061510123"},
		{"too long", "9006151012345"},
		{"letters", "900615-10-12AB"},
		{"invalid month", "901315-10-1234"},
		{"invalid day", "900632-10-1234"},
		{"feb 31", "900231-10-1234"},
		{"unexpected punctuation", "900615/10/1234"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if info := ParseNRIC(tc.nric); info != nil {
				t.Fatalf("expected nil for %q, got %+v", tc.nric, info)
			}
		})
	}
}

func TestGenderFromDigit(t *testing.T) {
	for d := 0; d <= 9; d++ {
		got := GenderFromDigit(d)
		want := "Female"
		if d%2 == 0 {
			want = "Male"
		}
		if got != want {
			t.Errorf("digit %d = %s, want %s", d, got, want)
		}
	}
}
