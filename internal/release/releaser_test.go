package release

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jirabuild/internal/build"
	"github.com/danielolaszy/jirabuild/internal/tracker/trackertest"
	"github.com/danielolaszy/jirabuild/pkg/models"
)

func versionsOf(versions ...models.Version) func(ctx context.Context, projectKey string) ([]models.Version, error) {
	return func(ctx context.Context, projectKey string) ([]models.Version, error) {
		return versions, nil
	}
}

func TestPerformReconcile(t *testing.T) {
	testCases := []struct {
		name         string
		project      string
		release      string
		env          map[string]string
		versions     []models.Version
		wantReleases []trackertest.ReleaseCall
		wantConsole  string
	}{
		{
			name:        "Already released is a no-op",
			project:     "ABC",
			release:     "1.0",
			versions:    []models.Version{{ID: "1", Name: "1.0", Released: true}},
			wantConsole: "already released",
		},
		{
			name:         "Unreleased match is released",
			project:      "ABC",
			release:      "1.1",
			versions:     []models.Version{{ID: "1", Name: "1.0", Released: true}, {ID: "2", Name: "1.1"}},
			wantReleases: []trackertest.ReleaseCall{{ProjectKey: "ABC", VersionName: "1.1"}},
			wantConsole:  "Marking JIRA version 1.1 in project ABC as released",
		},
		{
			name:         "Unknown version is left to the site",
			project:      "ABC",
			release:      "2.0",
			versions:     []models.Version{{ID: "1", Name: "1.0", Released: true}},
			wantReleases: []trackertest.ReleaseCall{{ProjectKey: "ABC", VersionName: "2.0"}},
		},
		{
			name:         "Ambiguous unreleased names are not rejected locally",
			project:      "XYZ",
			release:      "1.5",
			versions:     []models.Version{{ID: "5", Name: "1.5"}, {ID: "6", Name: "1.5"}},
			wantReleases: []trackertest.ReleaseCall{{ProjectKey: "XYZ", VersionName: "1.5"}},
		},
		{
			name:         "Ambiguous released names still attempt a release",
			project:      "XYZ",
			release:      "1.5",
			versions:     []models.Version{{ID: "5", Name: "1.5", Released: true}, {ID: "6", Name: "1.5", Released: true}},
			wantReleases: []trackertest.ReleaseCall{{ProjectKey: "XYZ", VersionName: "1.5"}},
		},
		{
			name:         "Name match is case-sensitive",
			project:      "ABC",
			release:      "V1.0",
			versions:     []models.Version{{ID: "1", Name: "v1.0", Released: true}},
			wantReleases: []trackertest.ReleaseCall{{ProjectKey: "ABC", VersionName: "V1.0"}},
		},
		{
			name:         "Project and release are expanded",
			project:      "${PROJECT}",
			release:      "$APP-${BUILD_NUMBER}",
			env:          map[string]string{"PROJECT": "ABC", "APP": "api", "BUILD_NUMBER": "42"},
			wantReleases: []trackertest.ReleaseCall{{ProjectKey: "ABC", VersionName: "api-42"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var console bytes.Buffer
			run := build.New("deploy", tc.env, &console)
			site := &trackertest.MockSite{
				SiteName:        "https://jira.example.com",
				GetVersionsFunc: versionsOf(tc.versions...),
			}

			ok := NewReleaser().Perform(context.Background(), site, tc.project, tc.release, run)

			assert.True(t, ok)
			assert.Empty(t, run.Result)
			assert.Len(t, site.VersionRequests, 1)
			assert.Equal(t, tc.wantReleases, site.Releases)
			assert.Contains(t, console.String(), tc.wantConsole)
		})
	}
}

func TestPerformValidationFailures(t *testing.T) {
	testCases := []struct {
		name      string
		project   string
		release   string
		env       map[string]string
		wantError string
	}{
		{
			name:      "Empty release",
			project:   "ABC",
			release:   "",
			wantError: "release is empty",
		},
		{
			name:      "Release empty after expansion",
			project:   "ABC",
			release:   "${VERSION}",
			env:       map[string]string{"VERSION": ""},
			wantError: "release is empty",
		},
		{
			name:      "Empty project",
			project:   "",
			release:   "1.0",
			wantError: "no project specified",
		},
		{
			name:      "Project empty after expansion",
			project:   "$PROJECT",
			release:   "1.0",
			env:       map[string]string{"PROJECT": " "},
			wantError: "no project specified",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var console bytes.Buffer
			run := build.New("deploy", tc.env, &console)
			site := &trackertest.MockSite{}

			ok := NewReleaser().Perform(context.Background(), site, tc.project, tc.release, run)

			assert.False(t, ok)
			assert.Equal(t, build.ResultFailure, run.Result)
			assert.Equal(t, 0, site.NetworkCalls())
			assert.Contains(t, console.String(), "FATAL: Unable to release jira version")
			assert.Contains(t, console.String(), tc.wantError)
		})
	}
}

func TestPerformTransportFailures(t *testing.T) {
	t.Run("Fetch fails", func(t *testing.T) {
		var console bytes.Buffer
		run := build.New("deploy", nil, &console)
		site := &trackertest.MockSite{
			GetVersionsFunc: func(ctx context.Context, projectKey string) ([]models.Version, error) {
				return nil, errors.New("connection refused")
			},
		}

		ok := NewReleaser().Perform(context.Background(), site, "ABC", "1.0", run)

		assert.False(t, ok)
		assert.Equal(t, build.ResultFailure, run.Result)
		assert.Empty(t, site.Releases)
		assert.Contains(t, console.String(), "FATAL: Unable to release jira version 1.0/ABC: get versions: connection refused")
	})

	t.Run("Release fails", func(t *testing.T) {
		var console bytes.Buffer
		run := build.New("deploy", nil, &console)
		site := &trackertest.MockSite{
			GetVersionsFunc:   versionsOf(models.Version{ID: "5", Name: "1.5"}, models.Version{ID: "6", Name: "1.5"}),
			ReleaseVersionErr: errors.New("ambiguous version name"),
		}

		ok := NewReleaser().Perform(context.Background(), site, "XYZ", "1.5", run)

		assert.False(t, ok)
		assert.Equal(t, build.ResultFailure, run.Result)
		assert.Len(t, site.Releases, 1)
		assert.Contains(t, console.String(), "release version: ambiguous version name")
	})

	t.Run("Collaborator panics", func(t *testing.T) {
		run := build.New("deploy", nil, nil)
		site := &trackertest.MockSite{
			GetVersionsFunc: func(ctx context.Context, projectKey string) ([]models.Version, error) {
				panic("unexpected response")
			},
		}

		var ok bool
		require.NotPanics(t, func() {
			ok = NewReleaser().Perform(context.Background(), site, "ABC", "1.0", run)
		})
		assert.False(t, ok)
		assert.Equal(t, build.ResultFailure, run.Result)
	})

	t.Run("No site", func(t *testing.T) {
		run := build.New("deploy", nil, nil)

		ok := NewReleaser().Perform(context.Background(), nil, "ABC", "1.0", run)

		assert.False(t, ok)
		assert.Equal(t, build.ResultFailure, run.Result)
	})
}

func TestPerformIsIdempotent(t *testing.T) {
	released := false
	site := &trackertest.MockSite{
		GetVersionsFunc: func(ctx context.Context, projectKey string) ([]models.Version, error) {
			return []models.Version{{ID: "1", Name: "1.0", Released: released}}, nil
		},
		ReleaseVersionFunc: func(ctx context.Context, projectKey, versionName string) error {
			released = true
			return nil
		},
	}
	run := build.New("deploy", nil, nil)
	releaser := NewReleaser()

	assert.True(t, releaser.Perform(context.Background(), site, "ABC", "1.0", run))
	assert.True(t, releaser.Perform(context.Background(), site, "ABC", "1.0", run))

	assert.Len(t, site.Releases, 1)
	assert.Len(t, site.VersionRequests, 2)
}

func TestMatchingVersions(t *testing.T) {
	versions := []models.Version{
		{ID: "1", Name: "1.0"},
		{ID: "2", Name: "1.0 "},
		{ID: "3", Name: "1.0"},
	}

	matches := matchingVersions(versions, "1.0")
	require.Len(t, matches, 2)
	assert.Equal(t, "1", matches[0].ID)
	assert.Equal(t, "3", matches[1].ID)

	assert.Empty(t, matchingVersions(nil, "1.0"))
}
