package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func aliceModule() ModuleSource {
	return ModuleSource{Name: ParseModuleName("alice/hello"), Origin: Origin{Kind: OriginLocal, Path: "/repo"}}
}

func TestPackageFQNString(t *testing.T) {
	root := PackageFQN{Module: aliceModule(), PackagePath: RootPackage}
	assert.Equal(t, "alice/hello", root.String())

	sub := PackageFQN{Module: aliceModule(), PackagePath: MustPackagePath("lib/util")}
	assert.Equal(t, "alice/hello/lib/util", sub.String())
}

func TestPackageFQNShortAlias(t *testing.T) {
	sub := PackageFQN{Module: aliceModule(), PackagePath: MustPackagePath("lib/util")}
	assert.Equal(t, "util", sub.ShortAlias())

	root := PackageFQN{Module: aliceModule(), PackagePath: RootPackage}
	assert.Equal(t, "hello", root.ShortAlias())
}

func TestPackageFQNEqualForSameModuleAndPath(t *testing.T) {
	a := PackageFQN{Module: aliceModule(), PackagePath: RootPackage}
	b := PackageFQN{Module: aliceModule(), PackagePath: RootPackage}
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.String(), b.String())
}
