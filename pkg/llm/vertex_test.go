package llm

import (
	"context"
	"testing"

	"cloud.google.com/go/vertexai/genai"
)

func TestVertexText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			"joins text parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text(`\section{Skills}`), genai.Text("\n\\item Go")}}},
			}},
			"\\section{Skills}\n\\item Go",
		},
		{
			"skips candidates without content",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: nil},
				nil,
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("second")}}},
			}},
			"second",
		},
		{
			"uses only the first candidate with content",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("first")}}},
				{Content: &genai.Content{Parts: []genai.Part{genai.Text("second")}}},
			}},
			"first",
		},
		{
			"ignores non text parts",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{
					genai.Blob{MIMEType: "image/png", Data: []byte{0x89}},
					genai.Text("caption"),
				}}},
			}},
			"caption",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vertexText(tt.resp)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewVertexProviderRequiresProject(t *testing.T) {
	_, err := NewVertexProvider(context.Background(), "", "us-central1", "")
	if err == nil {
		t.Error("Expected error for missing project, got nil")
	}
}
