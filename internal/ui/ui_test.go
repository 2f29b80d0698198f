package ui

import (
	"strings"
	"testing"
)

func TestRenderHelpersKeepText(t *testing.T) {
	helpers := map[string]func(string) string{
		"accent": RenderAccent,
		"pass":   RenderPass,
		"warn":   RenderWarn,
		"err":    RenderErr,
	}
	for name, render := range helpers {
		if got := render("marker"); !strings.Contains(got, "marker") {
			t.Errorf("%s: expected rendered output to keep the text, got %q", name, got)
		}
	}
}
