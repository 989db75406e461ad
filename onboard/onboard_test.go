package onboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowAll(t *testing.T) {
	var f Filter = AllowAll{}
	assert.True(t, f.Allowed("S1"))
	assert.True(t, f.Allowed(""))
}

func TestSetFilter(t *testing.T) {
	f := NewSetFilter([]string{"S1", "S3"})

	assert.True(t, f.Allowed("S1"))
	assert.True(t, f.Allowed("S3"))
	assert.False(t, f.Allowed("S2"))
	assert.False(t, f.Allowed(""))
}

func TestSetFilterEmpty(t *testing.T) {
	f := NewSetFilter(nil)
	assert.False(t, f.Allowed("S1"))
}
