package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveField(t *testing.T) {
	pages := []Page{
		{Index: 0, Field: Field{Obj: "board-0"}},
		{Index: 1, Field: Field{Ref: Ref(0)}},
		{Index: 2, Field: Field{Ref: Ref(1)}},
		{Index: 3, Field: Field{Ref: Ref(5)}}, // forward ref: broken
		{Index: 4, Field: Field{Ref: Ref(4)}}, // self ref: broken
	}

	tests := []struct {
		name  string
		index int
		want  string
	}{
		{name: "concrete value", index: 0, want: "board-0"},
		{name: "single hop", index: 1, want: "board-0"},
		{name: "chained hops", index: 2, want: "board-0"},
		{name: "forward ref falls back to empty", index: 3, want: ""},
		{name: "self ref falls back to empty", index: 4, want: ""},
		{name: "out of range", index: 9, want: ""},
		{name: "negative", index: -1, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveField(pages, tt.index))
		})
	}
}

func TestResolveComment(t *testing.T) {
	pages := []Page{
		{Index: 0, Comment: Comment{Text: "opening"}},
		{Index: 1, Comment: Comment{Ref: Ref(0)}},
		{Index: 2, Comment: Comment{}},
	}

	assert.Equal(t, "opening", ResolveComment(pages, 1))
	assert.Equal(t, "", ResolveComment(pages, 2))
}

func TestClonePagesIsDeep(t *testing.T) {
	pages := []Page{
		{Index: 0, Field: Field{Obj: "board-0"}, Comment: Comment{Text: "c"}},
		{Index: 1, Field: Field{Ref: Ref(0)}, Comment: Comment{Ref: Ref(0)}},
	}

	cp := ClonePages(pages)
	assert.True(t, PagesEqual(pages, cp))

	*cp[1].Field.Ref = 9
	cp[0].Field.Obj = "tampered"
	assert.Equal(t, 0, *pages[1].Field.Ref, "reference pointers must not be shared")
	assert.Equal(t, "board-0", pages[0].Field.Obj)

	assert.Nil(t, ClonePages(nil))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "sqlite ok", config: Config{Backend: BackendSQLite, DataDir: "/tmp/x"}},
		{name: "bolt ok", config: Config{Backend: BackendBolt, DataDir: "/tmp/x"}},
		{name: "empty backend", config: Config{DataDir: "/tmp/x"}, wantErr: ErrBackendEmpty},
		{name: "unknown backend", config: Config{Backend: "redis", DataDir: "/tmp/x"}, wantErr: ErrBackendUnknown},
		{name: "empty data dir", config: Config{Backend: BackendSQLite}, wantErr: ErrDataDirEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
