package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rvalk/depscan/internal/models"
)

func TestClassifyManagementFile(t *testing.T) {
	tests := []struct {
		path string
		kind models.ManagementFileKind
	}{
		{"/Directory.Packages.props", models.ManagementCentralVersions},
		{"/src/directory.packages.PROPS", models.ManagementCentralVersions},
		{"/src/App/packages.config", models.ManagementLegacyLock},
		{"/src/App/PACKAGES.CONFIG", models.ManagementLegacyLock},
		{"/src/App/App.csproj", models.ManagementUnknown},
		{"/src/Common.props", models.ManagementUnknown},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.kind, ClassifyManagementFile(tc.path), tc.path)
	}
}

func TestIsProjectFile(t *testing.T) {
	assert.True(t, IsProjectFile("/src/App/App.csproj"))
	assert.True(t, IsProjectFile("/src/App/App.FSPROJ"))
	assert.True(t, IsProjectFile("/src/Common.props"))
	assert.False(t, IsProjectFile("/src/App/Program.cs"))
	assert.False(t, IsProjectFile("/src/App/packages.config"))
	// The central manifest shares the .props extension but is not a project file
	assert.False(t, IsProjectFile("/Directory.Packages.props"))
}
