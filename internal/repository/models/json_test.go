package models

import (
	"testing"

	"mission-desk/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSlice_Value(t *testing.T) {
	v, err := StringSlice(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringSlice{"Budget under 10k", "No layoffs"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["Budget under 10k","No layoffs"]`, v)
}

func TestStringSlice_Scan(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    StringSlice
		wantErr bool
	}{
		{"nil", nil, StringSlice{}, false},
		{"empty string", "", StringSlice{}, false},
		{"null literal", []byte("null"), StringSlice{}, false},
		{"json bytes", []byte(`["a","b"]`), StringSlice{"a", "b"}, false},
		{"json string", `["x"]`, StringSlice{"x"}, false},
		{"unsupported", 42, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringSlice
			err := s.Scan(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestJSON_RoundTripAnalysis(t *testing.T) {
	nullValue, err := NewJSON[domain.AiAnalysis](nil).Value()
	require.NoError(t, err)
	assert.Nil(t, nullValue)

	in := &domain.AiAnalysis{Score: 55, Warnings: []domain.Warning{{Reason: "thin"}}}
	v, err := NewJSON(in).Value()
	require.NoError(t, err)

	var out JSON[domain.AiAnalysis]
	require.NoError(t, out.Scan(v))
	require.NotNil(t, out.Data)
	assert.Equal(t, 55.0, out.Data.Score)
	assert.Equal(t, "thin", out.Data.Warnings[0].Reason)

	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out.Data)
}
