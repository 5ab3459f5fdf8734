package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		want    string
		wantErr bool
	}{
		{
			name:  "local number gets country prefix",
			phone: "0612345678",
			want:  "+212612345678",
		},
		{
			name:  "international number kept as-is",
			phone: "+212612345678",
			want:  "+212612345678",
		},
		{
			name:  "spaces and dashes are stripped",
			phone: "06 12-34-56-78",
			want:  "+212612345678",
		},
		{
			name:    "no leading zero or plus is rejected",
			phone:   "612345678",
			wantErr: true,
		},
		{
			name:    "empty phone is rejected",
			phone:   "",
			wantErr: true,
		},
		{
			name:    "letters are rejected",
			phone:   "06123abc78",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.phone, "+212")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+212612345678"))
	assert.True(t, ValidatePhone("+33 6 12 34 56 78"))
	assert.False(t, ValidatePhone("0612345678"))
	assert.False(t, ValidatePhone("+0612345678"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("client@acme.ma"))
	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("two@@acme.ma"))
}
