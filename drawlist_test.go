package danmu_test

import (
	"testing"

	"github.com/go-danmu/danmu"
)

func TestDrawListGlyphQuad(t *testing.T) {
	dl := danmu.AcquireDrawList()
	defer danmu.ReleaseDrawList(dl)

	dl.AddGlyphQuad(danmu.GlyphQuad{
		X0: 10, Y0: 20, X1: 18, Y1: 30,
		U0: 0, V0: 0, U1: 0.5, V1: 0.5,
	}, danmu.RGBA(255, 0, 0, 255))

	if len(dl.VtxBuffer) != 4 {
		t.Fatalf("vertices = %d, want 4", len(dl.VtxBuffer))
	}
	if len(dl.IdxBuffer) != 6 {
		t.Fatalf("indices = %d, want 6", len(dl.IdxBuffer))
	}

	dl.Finalize()
	if len(dl.CmdBuffer) != 1 {
		t.Fatalf("commands = %d, want 1", len(dl.CmdBuffer))
	}
	if got := dl.CmdBuffer[0].ElemCount; got != 6 {
		t.Errorf("ElemCount = %d, want 6", got)
	}
}

func TestDrawListTransparentSkipped(t *testing.T) {
	dl := danmu.AcquireDrawList()
	defer danmu.ReleaseDrawList(dl)

	dl.AddGlyphQuad(danmu.GlyphQuad{X1: 10, Y1: 10}, danmu.RGBA(255, 255, 255, 0))
	dl.AddRect(0, 0, 10, 10, danmu.RGBA(0, 0, 0, 0))

	if len(dl.VtxBuffer) != 0 {
		t.Errorf("vertices = %d, want 0 for fully transparent primitives", len(dl.VtxBuffer))
	}
}

func TestDrawListTextureBatching(t *testing.T) {
	dl := danmu.AcquireDrawList()
	defer danmu.ReleaseDrawList(dl)

	white := danmu.RGBA(255, 255, 255, 255)
	quad := danmu.GlyphQuad{X1: 8, Y1: 10, U1: 1, V1: 1}

	dl.SetTexture(7)
	dl.AddGlyphQuad(quad, white)
	dl.AddGlyphQuad(quad, white)
	dl.SetTexture(9)
	dl.AddGlyphQuad(quad, white)

	dl.Finalize()
	if len(dl.CmdBuffer) != 2 {
		t.Fatalf("commands = %d, want 2 (one per texture)", len(dl.CmdBuffer))
	}
	if dl.CmdBuffer[0].TextureID != 7 || dl.CmdBuffer[0].ElemCount != 12 {
		t.Errorf("cmd 0 = {tex %d, elems %d}, want {7, 12}",
			dl.CmdBuffer[0].TextureID, dl.CmdBuffer[0].ElemCount)
	}
	if dl.CmdBuffer[1].TextureID != 9 || dl.CmdBuffer[1].ElemCount != 6 {
		t.Errorf("cmd 1 = {tex %d, elems %d}, want {9, 6}",
			dl.CmdBuffer[1].TextureID, dl.CmdBuffer[1].ElemCount)
	}
}

func TestDrawListClipStack(t *testing.T) {
	dl := danmu.AcquireDrawList()
	defer danmu.ReleaseDrawList(dl)

	white := danmu.RGBA(255, 255, 255, 255)

	dl.PushClipRect(0, 0, 100, 100)
	dl.AddRect(0, 0, 10, 10, white)
	dl.PushClipRect(10, 10, 50, 50)
	dl.AddRect(0, 0, 10, 10, white)
	dl.PopClipRect()
	dl.AddRect(0, 0, 10, 10, white)
	dl.PopClipRect()

	dl.Finalize()
	if len(dl.CmdBuffer) != 3 {
		t.Fatalf("commands = %d, want 3", len(dl.CmdBuffer))
	}
	if got := dl.CmdBuffer[1].ClipRect; got != [4]float32{10, 10, 50, 50} {
		t.Errorf("nested clip = %v, want [10 10 50 50]", got)
	}
	if got := dl.CmdBuffer[2].ClipRect; got != [4]float32{0, 0, 100, 100} {
		t.Errorf("restored clip = %v, want [0 0 100 100]", got)
	}
}

func TestDrawListClearRetainsNothingVisible(t *testing.T) {
	dl := danmu.AcquireDrawList()
	defer danmu.ReleaseDrawList(dl)

	dl.SetTexture(3)
	dl.AddGlyphQuad(danmu.GlyphQuad{X1: 8, Y1: 10}, danmu.RGBA(1, 2, 3, 255))
	dl.Clear()

	if len(dl.VtxBuffer) != 0 || len(dl.IdxBuffer) != 0 || len(dl.CmdBuffer) != 0 {
		t.Errorf("buffers not empty after Clear: %d/%d/%d",
			len(dl.VtxBuffer), len(dl.IdxBuffer), len(dl.CmdBuffer))
	}
}
