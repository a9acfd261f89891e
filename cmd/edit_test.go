package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormValidators(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) error
		in    string
		ok    bool
	}{
		{"amount", validateAmount, "12.50", true},
		{"amount spaces", validateAmount, " 3 ", true},
		{"amount zero", validateAmount, "0", false},
		{"amount negative", validateAmount, "-4", false},
		{"amount text", validateAmount, "abc", false},
		{"date", validateDate, "2024-03-02", true},
		{"date bad", validateDate, "02/03/2024", false},
		{"clock", validateClock, "09:30", true},
		{"clock bad", validateClock, "25:00", false},
		{"description", requireText("a description"), "Lunch", true},
		{"description blank", requireText("a description"), "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
