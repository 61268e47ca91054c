package keybind

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
)

func TestModifierByNameAliases(t *testing.T) {
	assert := assert.New(t)

	super, ok := ModifierByName("super")
	assert.True(ok)
	assert.Equal(uint16(xproto.ModMask4), super)

	alt, ok := ModifierByName("alt")
	assert.True(ok)
	assert.Equal(uint16(xproto.ModMask1), alt)
}

func TestModifierMaskOrsBitsAndSkipsUnknown(t *testing.T) {
	assert := assert.New(t)

	mask := ModifierMask([]string{"super", "shift", "bogus"})
	assert.Equal(uint16(xproto.ModMask4|xproto.ModMaskShift), mask)
}

func TestModifierMaskEmpty(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(0), ModifierMask(nil))
}
