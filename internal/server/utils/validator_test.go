package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cityQuery struct {
	City string `form:"city" validate:"required,cityname,max=20"`
	Lang string `form:"lang" validate:"omitempty,oneof=en zh"`
}

func TestValidateStruct(t *testing.T) {
	assert.Nil(t, ValidateStruct(cityQuery{City: "London", Lang: "zh"}))

	tests := []struct {
		name  string
		query cityQuery
		field string
		tag   string
	}{
		{"missing", cityQuery{}, "city", "required"},
		{"blank", cityQuery{City: "   "}, "city", "cityname"},
		{"control char", cityQuery{City: "Lon\x00don"}, "city", "cityname"},
		{"too long", cityQuery{City: "Llanfairpwllgwyngyllgogerychwyrndrobwll"}, "city", "max"},
		{"bad lang", cityQuery{City: "London", Lang: "fr"}, "lang", "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStruct(tt.query)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.tag, errs[0].Tag)
			assert.NotEmpty(t, errs[0].Message)
		})
	}
}
