package main

import (
	"testing"
	"time"
)

func TestValidateStatusInterval(t *testing.T) {
	tests := []struct {
		d       time.Duration
		wantErr bool
	}{
		{time.Second, false},
		{time.Millisecond, false},
		{0, true},
		{-time.Second, true},
	}

	for _, tc := range tests {
		if err := validateStatusInterval(tc.d); (err != nil) != tc.wantErr {
			t.Errorf("%v: unexpected error state: %v", tc.d, err)
		}
	}
}
