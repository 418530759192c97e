package storage

import "testing"

func TestSpacesService_ObjectKey(t *testing.T) {
	tests := []struct {
		name string
		root string
		key  string
		want string
	}{
		{name: "NoRoot", root: "", key: "current_quests.png", want: "current_quests.png"},
		{name: "WithRoot", root: "boards", key: "current_quests.png", want: "boards/current_quests.png"},
		{name: "LeadingSlashKey", root: "boards", key: "/base.png", want: "boards/base.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SpacesService{root: tt.root}
			if got := s.objectKey(tt.key); got != tt.want {
				t.Errorf("objectKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSpacesService_BoardURL(t *testing.T) {
	s := &SpacesService{bucket: "questboard", region: "fra1", root: "boards"}
	want := "https://questboard.fra1.digitaloceanspaces.com/boards/current_quests.png"
	if got := s.BoardURL(); got != want {
		t.Errorf("BoardURL() = %q, want %q", got, want)
	}
}
