package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kube-rca/dqsync/internal/config"
)

func TestBuildPostgresURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PostgresConfig
		want    string
		wantErr bool
	}{
		{
			name: "database-url-wins",
			cfg:  config.PostgresConfig{DatabaseURL: "postgres://a@db/x", User: "ignored", Database: "ignored"},
			want: "postgres://a@db/x",
		},
		{
			name: "from-parts",
			cfg:  config.PostgresConfig{Host: "pg", Port: "6543", User: "dq", Password: "p@ss", Database: "dqsync", SSLMode: "require"},
			want: "postgres://dq:p%40ss@pg:6543/dqsync?sslmode=require",
		},
		{
			name: "defaults",
			cfg:  config.PostgresConfig{User: "dq", Database: "dqsync"},
			want: "postgres://dq@localhost:5432/dqsync?sslmode=disable",
		},
		{
			name:    "missing-user",
			cfg:     config.PostgresConfig{Database: "dqsync"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPostgresURL(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, IsConfigured(tt.cfg))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsConfigured(tt.cfg))
		})
	}
}

func TestProposalSinkName(t *testing.T) {
	assert.Equal(t, config.SinkPostgres, NewProposalSink(nil).Name())
}
