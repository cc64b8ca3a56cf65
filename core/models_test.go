package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestID_String(t *testing.T) {
	tests := []struct {
		id   ID
		want string
	}{
		{0, "0000000000000000"},
		{255, "00000000000000ff"},
		{0xFFFFFFFFFFFFFFFF, "ffffffffffffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.id.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunkID(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		index  int
		want   string
	}{
		{"default prefix first", DefaultChunkPrefix, 0, "c_0"},
		{"default prefix later", DefaultChunkPrefix, 12, "c_12"},
		{"document prefix", "00000000000000ff", 3, "00000000000000ff_3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChunkID(tt.prefix, tt.index); got != tt.want {
				t.Errorf("ChunkID(%q, %d) = %q, want %q", tt.prefix, tt.index, got, tt.want)
			}
		})
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("notes.txt", "some text")

	if doc.Source != "notes.txt" {
		t.Errorf("Source = %q, want %q", doc.Source, "notes.txt")
	}
	if doc.Id != IDFromContent("some text") {
		t.Errorf("Id = %v, want content hash", doc.Id)
	}
	if doc.Metadata != nil {
		t.Errorf("Metadata = %v, want nil", doc.Metadata)
	}
}
