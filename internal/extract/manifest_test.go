package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvalk/depscan/internal/policy"
)

func noExclusions(t *testing.T) *policy.ExclusionPolicy {
	t.Helper()
	p, err := policy.NewExclusionPolicy(nil, nil, nil, false)
	require.NoError(t, err)
	return p
}

func TestExtractManifestVersionAttribute(t *testing.T) {
	content := `<Project Sdk="Microsoft.NET.Sdk">
		<ItemGroup>
			<PackageReference Include="Newtonsoft.Json" Version="13.0.3" />
			<PackageReference Include="Dapper" Version="2.1.35" />
		</ItemGroup>
	</Project>`

	declarations, err := ExtractManifest(content, "web", "/src/App.csproj", "App", noExclusions(t))

	require.NoError(t, err)
	require.Len(t, declarations, 2)
	assert.Equal(t, "Newtonsoft.Json", declarations[0].Name)
	assert.Equal(t, "13.0.3", declarations[0].Version)
	assert.Equal(t, "web", declarations[0].Repository)
	assert.Equal(t, "/src/App.csproj", declarations[0].ProjectPath)
	assert.Equal(t, "App", declarations[0].ProjectRef)
}

func TestExtractManifestVersionElement(t *testing.T) {
	content := `<Project>
		<ItemGroup>
			<PackageReference Include="Serilog">
				<Version>3.1.1</Version>
			</PackageReference>
		</ItemGroup>
	</Project>`

	declarations, err := ExtractManifest(content, "web", "/App.csproj", "App", noExclusions(t))

	require.NoError(t, err)
	require.Len(t, declarations, 1)
	assert.Equal(t, "3.1.1", declarations[0].Version)
}

func TestExtractManifestMissingVersion(t *testing.T) {
	// Centrally managed projects omit versions entirely
	content := `<Project>
		<ItemGroup>
			<PackageReference Include="Serilog" />
		</ItemGroup>
	</Project>`

	declarations, err := ExtractManifest(content, "web", "/App.csproj", "App", noExclusions(t))

	require.NoError(t, err)
	require.Len(t, declarations, 1)
	assert.Empty(t, declarations[0].Version)
}

func TestExtractManifestMultipleItemGroups(t *testing.T) {
	content := `<Project>
		<ItemGroup><PackageReference Include="A" Version="1" /></ItemGroup>
		<ItemGroup><Compile Include="Program.cs" /></ItemGroup>
		<ItemGroup><PackageReference Include="B" Version="2" /></ItemGroup>
	</Project>`

	declarations, err := ExtractManifest(content, "web", "/App.csproj", "App", noExclusions(t))

	require.NoError(t, err)
	require.Len(t, declarations, 2)
}

func TestExtractManifestAppliesExclusions(t *testing.T) {
	exclusions, err := policy.NewExclusionPolicy([]string{"Microsoft."}, nil, nil, false)
	require.NoError(t, err)

	content := `<Project>
		<ItemGroup>
			<PackageReference Include="Microsoft.Extensions.Logging" Version="8.0.0" />
			<PackageReference Include="Serilog" Version="3.1.1" />
		</ItemGroup>
	</Project>`

	declarations, err := ExtractManifest(content, "web", "/App.csproj", "App", exclusions)

	require.NoError(t, err)
	require.Len(t, declarations, 1)
	assert.Equal(t, "Serilog", declarations[0].Name)
}

func TestExtractManifestDuplicateReferenceFirstWins(t *testing.T) {
	// Conditioned ItemGroups re-declare the same package per target framework
	content := `<Project>
		<ItemGroup Condition="'$(TargetFramework)' == 'net8.0'">
			<PackageReference Include="Serilog" Version="3.1.1" />
		</ItemGroup>
		<ItemGroup Condition="'$(TargetFramework)' == 'net472'">
			<PackageReference Include="serilog" Version="2.0.0" />
		</ItemGroup>
	</Project>`

	declarations, err := ExtractManifest(content, "web", "/App.csproj", "App", noExclusions(t))

	require.NoError(t, err)
	require.Len(t, declarations, 1)
	assert.Equal(t, "Serilog", declarations[0].Name)
	assert.Equal(t, "3.1.1", declarations[0].Version)
}

func TestExtractManifestInvalidXML(t *testing.T) {
	_, err := ExtractManifest("<Project><ItemGroup>", "web", "/App.csproj", "App", noExclusions(t))
	assert.Error(t, err)
}
