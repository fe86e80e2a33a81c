package shader

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xenos/ucode"
)

func TestApplyTranslationOnce(t *testing.T) {
	sh := New(ucode.ShaderPixel, []uint32{1, 2, 3})
	require.False(t, sh.IsTranslated())
	require.False(t, sh.IsValid())

	tr := &Translation{Valid: true, UcodeDisassembly: "xps_3_0\n"}
	require.NoError(t, sh.ApplyTranslation(tr))
	assert.True(t, sh.IsTranslated())
	assert.True(t, sh.IsValid())
	assert.Equal(t, "xps_3_0\n", sh.UcodeDisassembly())

	assert.Error(t, sh.ApplyTranslation(tr), "a shader translates at most once")
}

func TestFatalErrorsInvalidate(t *testing.T) {
	sh := New(ucode.ShaderVertex, []uint32{1})
	tr := &Translation{
		Valid:  true,
		Errors: []Error{{Message: "advisory"}, {Fatal: true, Message: "broken"}},
	}
	require.NoError(t, sh.ApplyTranslation(tr))
	assert.True(t, sh.IsTranslated())
	assert.False(t, sh.IsValid())
	assert.Len(t, sh.Errors(), 2)
}

func TestUcodeDataHash(t *testing.T) {
	a := New(ucode.ShaderVertex, []uint32{1, 2, 3})
	b := New(ucode.ShaderPixel, []uint32{1, 2, 3})
	c := New(ucode.ShaderVertex, []uint32{1, 2, 4})
	assert.Equal(t, a.UcodeDataHash(), b.UcodeDataHash(), "the hash covers microcode only")
	assert.NotEqual(t, a.UcodeDataHash(), c.UcodeDataHash())
}

type memWriter map[string][]byte

func (w memWriter) WriteFile(name string, data []byte) error {
	w[name] = data
	return nil
}

func TestDump(t *testing.T) {
	sh := New(ucode.ShaderVertex, []uint32{0x11223344})
	w := memWriter{}

	binPath, txtPath, err := sh.Dump(w, "dumps", "game")
	require.NoError(t, err)
	wantBin := filepath.Join("dumps", fmt.Sprintf("game.vs.%016x.bin", sh.UcodeDataHash()))
	assert.Equal(t, wantBin, binPath)
	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, w[binPath])
	assert.Empty(t, txtPath, "no disassembly before translation")

	require.NoError(t, sh.ApplyTranslation(&Translation{Valid: true, UcodeDisassembly: "xvs_3_0\n"}))
	_, txtPath, err = sh.Dump(w, "dumps", "game")
	require.NoError(t, err)
	wantTxt := filepath.Join("dumps", fmt.Sprintf("game.vs.%016x.txt", sh.UcodeDataHash()))
	assert.Equal(t, wantTxt, txtPath)
	assert.Equal(t, []byte("xvs_3_0\n"), w[txtPath])
}
