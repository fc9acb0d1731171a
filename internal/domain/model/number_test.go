package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "12.50", want: "12.5"},
		{raw: " 12,5 ", want: "12.5"},
		{raw: "12,50", want: "12.5"},
		{raw: "-3,25", want: "-3.25"},
		{raw: "7", want: "7"},
		{raw: "1,299", wantErr: true},
		{raw: "1.299,00", wantErr: true},
		{raw: "1,299.00", wantErr: true},
		{raw: "1,2,3", wantErr: true},
		{raw: "5,", wantErr: true},
		{raw: "abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDecimal(tt.raw)
		if tt.wantErr {
			require.Error(t, err, "raw %q", tt.raw)
			continue
		}
		require.NoError(t, err, "raw %q", tt.raw)
		require.Equal(t, tt.want, got.String(), "raw %q", tt.raw)
	}
}
