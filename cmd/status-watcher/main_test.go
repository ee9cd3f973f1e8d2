package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hackgods/clinic-dashboard/internal/config"
)

func TestCheckOneShot(t *testing.T) {
	tests := []struct {
		name    string
		once    bool
		cfg     config.Config
		wantErr error
	}{
		{"looping without redis", false, config.Config{}, nil},
		{"looping with redis", false, config.Config{RedisAddr: "localhost:6379"}, nil},
		{"once with redis", true, config.Config{RedisAddr: "localhost:6379"}, nil},
		{"once without redis", true, config.Config{}, errOneShotNeedsRedis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, checkOneShot(tt.once, tt.cfg), tt.wantErr)
		})
	}
}
