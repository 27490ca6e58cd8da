package core

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleSourceEqualRequiresAllThreeFields(t *testing.T) {
	v1 := semver.MustParse("1.0.0")
	v2 := semver.MustParse("1.0.1")
	base := ModuleSource{Name: ParseModuleName("alice/hello"), Version: v1, Origin: Origin{Kind: OriginRegistry}}

	sameEverything := base
	assert.True(t, base.Equal(sameEverything))

	differentVersion := base
	differentVersion.Version = v2
	assert.False(t, base.Equal(differentVersion))

	differentOrigin := base
	differentOrigin.Origin = Origin{Kind: OriginGit, URL: "https://example.com/alice/hello"}
	assert.False(t, base.Equal(differentOrigin))
}

func TestModuleSourceEqualTreatsNilVersionsSpecially(t *testing.T) {
	a := ModuleSource{Name: ParseModuleName("alice/hello"), Origin: Origin{Kind: OriginLocal, Path: "/a"}}
	b := a
	assert.True(t, a.Equal(b))

	b.Version = semver.MustParse("0.0.1")
	assert.False(t, a.Equal(b))
}

func TestParseModuleName(t *testing.T) {
	n := ParseModuleName("alice/collections/json")
	require.Equal(t, "alice", n.Username)
	require.Equal(t, "collections/json", n.Unqualified)
	assert.Equal(t, "json", n.LastSegment())
	assert.Equal(t, "alice/collections/json", n.String())

	bare := ParseModuleName("stdlib")
	assert.Equal(t, "", bare.Username)
	assert.Equal(t, "stdlib", bare.String())
}

func TestModuleSourceCompareOrdersByNameThenVersion(t *testing.T) {
	a := ModuleSource{Name: ParseModuleName("alice/a"), Version: semver.MustParse("1.0.0")}
	b := ModuleSource{Name: ParseModuleName("alice/a"), Version: semver.MustParse("2.0.0")}
	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
}
