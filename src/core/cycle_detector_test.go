package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCycleDetectorNoCycle(t *testing.T) {
	c := NewCycleDetector[string]()
	assert.Nil(t, c.AddDependency("a", "b"))
	assert.Nil(t, c.AddDependency("b", "c"))
	assert.Nil(t, c.AddDependency("a", "c"))
}

func TestCycleDetectorFindsDirectCycle(t *testing.T) {
	c := NewCycleDetector[string]()
	assert.Nil(t, c.AddDependency("a", "b"))
	cycle := c.AddDependency("b", "a")
	assert.NotNil(t, cycle)
}

func TestCycleDetectorFindsTransitiveCycle(t *testing.T) {
	c := NewCycleDetector[string]()
	assert.Nil(t, c.AddDependency("a", "b"))
	assert.Nil(t, c.AddDependency("b", "c"))
	cycle := c.AddDependency("c", "a")
	assert.NotNil(t, cycle)
}
