package service

import (
	"time"
)

// NRICInfo is what can be derived from a well-formed 12-digit NRIC.
type NRICInfo struct {
	DateOfBirth time.Time
	Gender      string
}

// ParseNRIC derives date of birth and gender from a Malaysian-style
// 12-digit NRIC (YYMMDD-PB-###G). Two-digit years up to 30 are read as
// 2000s, the rest as 1900s. The final digit's parity decides gender:
// even is Male, odd is Female. Malformed input returns nil; the caller
// treats the assist as optional.
func ParseNRIC(nric string) *NRICInfo {
	digits := make([]byte, 0, 12)
	for i := 0; i < len(nric); i++ {
		c := nric[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		} else if c != '-' && c != ' ' {
			return nil
		}
	}
	if len(digits) != 12 {
		return nil
	}

	year := int(digits[0]-'0')*10 + int(digits[1]-'0')
	month := int(digits[2]-'0')*10 + int(digits[3]-'0')
	day := int(digits[4]-'0')*10 + int(digits[5]-'0')

	if year <= 30 {
		year += 2000
	} else {
		year += 1900
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}

	dob := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Reject dates that normalized away (e.g. Feb 31).
	if int(dob.Month()) != month || dob.Day() != day {
		return nil
	}

	gender := GenderFromDigit(int(digits[11] - '0'))

	return &NRICInfo{DateOfBirth: dob, Gender: gender}
}

func GenderFromDigit(d int) string {
	if d%2 == 0 {
		return "Male"
	}
	return "Female"
}
