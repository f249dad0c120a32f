package contract

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Doubling-Open-Source/git-calculator/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	expectRoot := func(mock *MockGitClient, workDir string) {
		mock.On("GetRepoRoot", context.Background(), workDir).Return("/mock/repo/root", nil)
	}

	tests := []struct {
		name        string
		input       *ConfigRawInput
		expectError bool
		setupMock   func(*MockGitClient, string)
		check       func(*testing.T, *Config)
	}{
		{
			name:      "defaults",
			input:     &ConfigRawInput{RepoPathStr: "."},
			setupMock: expectRoot,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/mock/repo/root", cfg.RepoPath)
				assert.Equal(t, DefaultRef, cfg.Ref)
				assert.Equal(t, schema.TopStrategy, cfg.Strategy)
				assert.Equal(t, schema.CountBuckets, cfg.BucketMode)
				assert.Equal(t, schema.GitSource, cfg.Source)
				assert.Equal(t, schema.TextOut, cfg.Output)
				assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
				assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
				assert.Equal(t, time.UTC, cfg.Location)
				assert.True(t, cfg.StartTime.IsZero())
				assert.True(t, cfg.EndTime.IsZero())
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name: "analysis options",
			input: &ConfigRawInput{
				RepoPathStr: ".",
				Ref:         " main ",
				Strategy:    "Narrow",
				By:          "month",
				Bucket:      4,
				Source:      "gogit",
				Timezone:    "Europe/Berlin",
				Start:       "2024-01-01",
				End:         "2024-06-30T00:00:00Z",
				CacheTTL:    "2 days",
				Color:       "no",
				LogLevel:    "debug",
			},
			setupMock: expectRoot,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "main", cfg.Ref)
				assert.Equal(t, schema.NarrowStrategy, cfg.Strategy)
				assert.Equal(t, schema.MonthBuckets, cfg.BucketMode)
				assert.Equal(t, 4, cfg.BucketSize)
				assert.Equal(t, schema.GoGitSource, cfg.Source)
				assert.Equal(t, "Europe/Berlin", cfg.Location.String())
				assert.Equal(t, 2024, cfg.StartTime.Year())
				assert.Equal(t, cfg.Location, cfg.StartTime.Location())
				assert.Equal(t, 48*time.Hour, cfg.CacheTTL)
				assert.False(t, cfg.UseColors)
				assert.Equal(t, "DEBUG", cfg.LogLevel.String())
			},
		},
		{
			name:        "invalid strategy",
			input:       &ConfigRawInput{RepoPathStr: ".", Strategy: "sideways"},
			expectError: true,
		},
		{
			name:        "invalid bucket mode",
			input:       &ConfigRawInput{RepoPathStr: ".", By: "week"},
			expectError: true,
		},
		{
			name:        "negative bucket",
			input:       &ConfigRawInput{RepoPathStr: ".", Bucket: -1},
			expectError: true,
		},
		{
			name:        "invalid source",
			input:       &ConfigRawInput{RepoPathStr: ".", Source: "svn"},
			expectError: true,
		},
		{
			name:        "invalid timezone",
			input:       &ConfigRawInput{RepoPathStr: ".", Timezone: "Mars/Olympus"},
			expectError: true,
		},
		{
			name:        "start after end",
			input:       &ConfigRawInput{RepoPathStr: ".", Start: "2024-06-01", End: "2024-01-01"},
			expectError: true,
		},
		{
			name:        "invalid start",
			input:       &ConfigRawInput{RepoPathStr: ".", Start: "yesterday-ish"},
			expectError: true,
		},
		{
			name:        "invalid output format",
			input:       &ConfigRawInput{RepoPathStr: ".", Output: "xml"},
			expectError: true,
		},
		{
			name:        "parquet without file",
			input:       &ConfigRawInput{RepoPathStr: ".", Output: "parquet"},
			expectError: true,
		},
		{
			name:        "invalid log level",
			input:       &ConfigRawInput{RepoPathStr: ".", LogLevel: "chatty"},
			expectError: true,
		},
		{
			name:        "invalid cache backend",
			input:       &ConfigRawInput{RepoPathStr: ".", CacheBackend: "redis"},
			expectError: true,
		},
		{
			name:        "mysql backend without connection string",
			input:       &ConfigRawInput{RepoPathStr: ".", CacheBackend: string(schema.MySQLBackend)},
			expectError: true,
		},
		{
			name:        "postgresql analysis backend without connection string",
			input:       &ConfigRawInput{RepoPathStr: ".", AnalysisBackend: string(schema.PostgreSQLBackend)},
			expectError: true,
		},
		{
			name: "mysql backend with connection string",
			input: &ConfigRawInput{
				RepoPathStr:    ".",
				CacheBackend:   string(schema.MySQLBackend),
				CacheDBConnect: "user:pass@tcp(localhost:3306)/gitcalc",
			},
			setupMock: expectRoot,
		},
		{
			name: "shared sqlite file",
			input: &ConfigRawInput{
				RepoPathStr:       ".",
				CacheDBConnect:    "/tmp/shared.db",
				AnalysisBackend:   string(schema.SQLiteBackend),
				AnalysisDBConnect: "/tmp/shared.db",
			},
			expectError: true,
		},
		{
			name:        "invalid cache ttl",
			input:       &ConfigRawInput{RepoPathStr: ".", CacheTTL: "forever"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockClient := new(MockGitClient)
			workDir, err := filepath.Abs(".")
			require.NoError(t, err)
			if tt.setupMock != nil {
				tt.setupMock(mockClient, workDir)
			}

			cfg := &Config{}
			err = ProcessAndValidate(context.Background(), cfg, mockClient, tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
			mockClient.AssertExpectations(t)
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{schema.SQLiteBackend, "", false},
		{schema.NoneBackend, "", false},
		{schema.MySQLBackend, "user:pass@tcp(db:3306)/gitcalc", false},
		{schema.MySQLBackend, "user:pass@db/gitcalc", true},
		{schema.MySQLBackend, "user:pass@tcp(db:3306)", true},
		{schema.PostgreSQLBackend, "host=db port=5432 dbname=gitcalc", false},
		{schema.PostgreSQLBackend, "dbname=gitcalc", true},
		{schema.PostgreSQLBackend, "host=db", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend)+" "+tt.connStr, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Ref: "main", BucketSize: 3, Location: time.UTC}
	clone := cfg.Clone()
	clone.Ref = "dev"
	clone.BucketSize = 5

	assert.Equal(t, "main", cfg.Ref)
	assert.Equal(t, 3, cfg.BucketSize)
	assert.Same(t, cfg.Location, clone.Location)
}

func TestProcessProfilingConfig(t *testing.T) {
	var profile ProfileConfig
	ProcessProfilingConfig(&profile, "")
	assert.False(t, profile.Enabled)

	ProcessProfilingConfig(&profile, "gitcalc")
	assert.True(t, profile.Enabled)
	assert.Equal(t, "gitcalc", profile.Prefix)
}

func TestRevalidateAnalysis(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	base := &Config{StartTime: start, Location: time.UTC}

	t.Run("keeps window without bounds", func(t *testing.T) {
		cfg := base.Clone()
		require.NoError(t, RevalidateAnalysis(cfg, &ConfigRawInput{Ref: "main", Strategy: "narrow", Bucket: 4}))
		assert.Equal(t, "main", cfg.Ref)
		assert.Equal(t, schema.NarrowStrategy, cfg.Strategy)
		assert.Equal(t, 4, cfg.BucketSize)
		assert.True(t, start.Equal(cfg.StartTime))
	})

	t.Run("replaces window", func(t *testing.T) {
		cfg := base.Clone()
		require.NoError(t, RevalidateAnalysis(cfg, &ConfigRawInput{End: "2024-02-01T00:00:00Z"}))
		assert.True(t, cfg.StartTime.IsZero())
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), cfg.EndTime.UTC())
	})

	t.Run("invalid strategy", func(t *testing.T) {
		err := RevalidateAnalysis(base.Clone(), &ConfigRawInput{Strategy: "sideways"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid strategy")
	})

	t.Run("invalid bucket mode", func(t *testing.T) {
		assert.Error(t, RevalidateAnalysis(base.Clone(), &ConfigRawInput{By: "week"}))
	})
}
