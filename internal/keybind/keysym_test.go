package keybind

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeysymByNameLetters(t *testing.T) {
	assert := assert.New(t)

	sym, ok := KeysymByName("a")
	assert.True(ok)
	assert.Equal(uint32('a'), uint32(sym))
}

func TestKeysymByNameFunctionKeys(t *testing.T) {
	assert := assert.New(t)

	f1, ok := KeysymByName("f1")
	assert.True(ok)
	assert.Equal(uint32(0xffbe), uint32(f1))

	f12, ok := KeysymByName("f12")
	assert.True(ok)
	assert.Equal(uint32(0xffbe+11), uint32(f12))
}

func TestKeysymByNameAliases(t *testing.T) {
	assert := assert.New(t)

	ret, ok := KeysymByName("return")
	assert.True(ok)
	enter, ok := KeysymByName("enter")
	assert.True(ok)
	assert.Equal(ret, enter)
}

func TestKeysymByNameUnknown(t *testing.T) {
	assert := assert.New(t)

	_, ok := KeysymByName("not-a-key")
	assert.False(ok)
}
