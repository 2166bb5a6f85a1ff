package ai

import "testing"

func TestBuildContentsMapsRolesAndAppendsUserText(t *testing.T) {
	history := []Message{
		{Role: "user", Text: "earlier question"},
		{Role: "model", Text: "earlier answer"},
	}

	contents := buildContents(history, "new question")
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}

	wantRoles := []string{"user", "model", "user"}
	wantTexts := []string{"earlier question", "earlier answer", "new question"}
	for i, c := range contents {
		if c.Role != wantRoles[i] {
			t.Fatalf("content %d: expected role %q, got %q", i, wantRoles[i], c.Role)
		}
		if len(c.Parts) != 1 || c.Parts[0].Text != wantTexts[i] {
			t.Fatalf("content %d: expected text %q, got %+v", i, wantTexts[i], c.Parts)
		}
	}
}

func TestBuildContentsEmptyHistory(t *testing.T) {
	contents := buildContents(nil, "hello")
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	if contents[0].Role != "user" {
		t.Fatalf("expected user role, got %q", contents[0].Role)
	}
}
