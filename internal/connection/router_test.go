package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppRouter_AllowMigrate(t *testing.T) {
	r := NewAppRouter(map[string]Config{
		"default":   {Engine: "postgresql"},
		"analytics": {Engine: "postgresql", Apps: []string{"events", "reports"}},
	})

	tests := []struct {
		alias  string
		module string
		want   bool
	}{
		{"default", "auth", true},
		{"analytics", "events", true},
		{"analytics", "auth", false},
		{"unconfigured", "auth", true},
	}
	for _, tt := range tests {
		t.Run(tt.alias+"/"+tt.module, func(t *testing.T) {
			assert.Equal(t, tt.want, r.AllowMigrate(tt.alias, tt.module))
		})
	}
}
