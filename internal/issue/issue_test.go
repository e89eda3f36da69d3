// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	// Verify all IDs are unique and sequential
	ids := []Id{
		IndexFetchFailedId,
		NoMatchingWheelId,
		RegistryFetchFailedId,
		NoBaseImageTagId,
		ContainerEngineNotFoundId,
		BaseImagePullFailedId,
		ProvisionStepFailedId,
		ConfigLoadFailedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	// Verify IDs start at 1 (iota + 1)
	if IndexFetchFailedId != 1 {
		t.Errorf("IndexFetchFailedId = %d, want 1", IndexFetchFailedId)
	}
}

func TestIssue_Id(t *testing.T) {
	issue := Get(NoMatchingWheelId)
	if issue == nil {
		t.Fatal("Get(NoMatchingWheelId) returned nil")
	}

	if issue.Id() != NoMatchingWheelId {
		t.Errorf("issue.Id() = %d, want %d", issue.Id(), NoMatchingWheelId)
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	issue := Get(NoMatchingWheelId)
	if issue == nil {
		t.Fatal("Get(NoMatchingWheelId) returned nil")
	}

	msg := issue.MarkdownMsg()
	if msg == "" {
		t.Error("MarkdownMsg() returned empty string")
	}

	if !strings.Contains(string(msg), "No matching torch wheel") {
		t.Error("MarkdownMsg() should contain 'No matching torch wheel'")
	}
}

func TestIssue_ExtLinks(t *testing.T) {
	issue := Get(NoBaseImageTagId)
	if issue == nil {
		t.Fatal("Get(NoBaseImageTagId) returned nil")
	}

	// ExtLinks returns a clone of the links
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("NoBaseImageTagId should carry an external link")
	}

	original := links[0]
	links[0] = "modified"
	newLinks := issue.ExtLinks()
	if newLinks[0] != original {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestIssue_Render(t *testing.T) {
	// Mock the render function for testing
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in string, stylePath string) (string, error) {
		return in, nil
	}

	issue := Get(ContainerEngineNotFoundId)
	if issue == nil {
		t.Fatal("Get(ContainerEngineNotFoundId) returned nil")
	}

	rendered, err := issue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	if !strings.Contains(rendered, "Container engine not found") {
		t.Error("Render() output should contain the issue headline")
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{IndexFetchFailedId, false, "Failed to fetch the wheel index"},
		{NoMatchingWheelId, false, "No matching torch wheel"},
		{RegistryFetchFailedId, false, "Failed to query Docker Hub"},
		{NoBaseImageTagId, false, "No matching CUDA base image"},
		{ContainerEngineNotFoundId, false, "Container engine not found"},
		{BaseImagePullFailedId, false, "Failed to pull the base image"},
		{ProvisionStepFailedId, false, "Provisioning step failed"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{Id(9999), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}

			if tt.contains != "" && !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain '%s'", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	expectedCount := 8

	if len(issues) != expectedCount {
		t.Errorf("Values() returned %d issues, want %d", len(issues), expectedCount)
	}

	for _, issue := range issues {
		if issue.Id() == 0 {
			t.Error("found issue with ID 0")
		}
	}
}

func TestIssue_Render_WithLinks(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()

	render = func(in string, stylePath string) (string, error) {
		return in, nil
	}

	testIssue := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue\n\nThis is a test.",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}

	rendered, err := testIssue.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	if !strings.Contains(rendered, "See also") {
		t.Error("Render() with links should contain 'See also'")
	}
}
