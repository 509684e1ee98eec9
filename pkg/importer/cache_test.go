package importer

import (
	"testing"

	"github.com/Faultbox/abcproc/pkg/math"
)

func TestCachedDataAddAttribute(t *testing.T) {
	var c CachedData

	a := c.AddAttribute("uv")
	if c.AddAttribute("uv") != a {
		t.Error("AddAttribute created a duplicate")
	}
	if len(c.Attributes) != 1 {
		t.Errorf("attribute count = %d, want 1", len(c.Attributes))
	}
	if c.FindAttribute("uv") != a {
		t.Error("FindAttribute missed")
	}
	if c.FindAttribute("nope") != nil {
		t.Error("FindAttribute found nonexistent attribute")
	}
}

func TestCachedDataIsConstant(t *testing.T) {
	var c CachedData
	if !c.IsConstant() {
		t.Error("empty cache not constant")
	}

	c.Vertices.AddData([]math.Vec3{{}}, 0)
	if !c.IsConstant() {
		t.Error("single-sample cache not constant")
	}

	c.Vertices.AddData([]math.Vec3{{X: 1}}, 1)
	if c.IsConstant() {
		t.Error("two-sample cache reported constant")
	}

	c.Clear()
	if !c.IsConstant() {
		t.Error("cleared cache not constant")
	}

	attr := c.AddAttribute("color")
	attr.Data.AddData(AttrSample{}, 0)
	attr.Data.AddData(AttrSample{}, 1)
	if c.IsConstant() {
		t.Error("animated attribute not detected")
	}
}

func TestProgressNilSafe(t *testing.T) {
	var p *Progress
	p.Cancel()
	if p.Cancelled() {
		t.Error("nil progress reports cancelled")
	}

	p = &Progress{}
	if p.Cancelled() {
		t.Error("fresh progress reports cancelled")
	}
	p.Cancel()
	if !p.Cancelled() {
		t.Error("cancel did not stick")
	}
	p.Reset()
	if p.Cancelled() {
		t.Error("reset did not clear cancellation")
	}
}
