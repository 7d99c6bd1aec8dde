package prompt

import (
	"strings"
	"testing"
)

func TestBuild_ContainsDesignTypeAndFocusAreas(t *testing.T) {
	text := Build("email", []string{"typography", "color_scheme"}, "")

	if !strings.Contains(text, "Analyze this email design") {
		t.Error("Expected prompt to name the design type")
	}
	if !strings.Contains(text, "- Typography: Font choices") {
		t.Error("Expected typography focus description")
	}
	if !strings.Contains(text, "- Color Scheme: Color harmony") {
		t.Error("Expected color scheme focus description")
	}
}

func TestBuild_KnownFocusAreaDescriptions(t *testing.T) {
	// Every tag in the table should expand to its long-form description
	for tag, desc := range focusDescriptions {
		text := Build("web", []string{tag}, "")
		if !strings.Contains(text, "- "+desc) {
			t.Errorf("Expected description for %q in prompt", tag)
		}
	}
}

func TestBuild_UnknownFocusAreaPassedVerbatim(t *testing.T) {
	text := Build("dashboard", []string{"brand_alignment"}, "")

	if !strings.Contains(text, "- brand_alignment") {
		t.Error("Expected unknown focus area to appear verbatim")
	}
}

func TestBuild_ResponseSchemaPresent(t *testing.T) {
	text := Build("email", []string{"typography"}, "")

	for _, fragment := range []string{
		`"overall_score": <1-10>`,
		`"summary"`,
		`"scores"`,
		`"strengths"`,
		`"improvements"`,
		"Score guide:",
	} {
		if !strings.Contains(text, fragment) {
			t.Errorf("Expected prompt to contain %q", fragment)
		}
	}
}

func TestBuild_CustomPromptAppended(t *testing.T) {
	custom := "The target audience is retirees; prioritize legibility."
	text := Build("email", []string{"typography"}, custom)

	if !strings.HasSuffix(text, "ADDITIONAL CONTEXT:\n"+custom) {
		t.Error("Expected custom prompt appended as additional context")
	}

	without := Build("email", []string{"typography"}, "")
	if strings.Contains(without, "ADDITIONAL CONTEXT") {
		t.Error("Expected no additional context section without a custom prompt")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	areas := []string{"layout", "typography", "whitespace"}

	first := Build("landing_page", areas, "extra context")
	second := Build("landing_page", areas, "extra context")

	if first != second {
		t.Error("Expected identical inputs to produce identical prompts")
	}
}

func TestBuild_FocusAreaOrderPreserved(t *testing.T) {
	text := Build("web", []string{"imagery", "layout"}, "")

	imagery := strings.Index(text, "- Imagery:")
	layout := strings.Index(text, "- Layout:")
	if imagery == -1 || layout == -1 {
		t.Fatal("Expected both focus descriptions in prompt")
	}
	if imagery > layout {
		t.Error("Expected focus areas to keep request order")
	}
}
