package codec

import (
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dukaforge/boardtree/pkg/tree"
	"github.com/dukaforge/boardtree/pkg/types"
)

// ErrSnapshotDecode wraps any failure to deserialize a snapshot payload.
// Callers treat it as a data-integrity condition fatal to that load only.
var ErrSnapshotDecode = errors.New("snapshot payload is not decodable")

// snapshotPayload is the wire form of a snapshot: the flat page list with
// the tree already embedded through the comment marker, plus the cursor.
type snapshotPayload struct {
	Pages   []types.Page `msgpack:"pages"`
	Current int          `msgpack:"current"`
}

// EncodeSnapshot serializes a snapshot into one self-contained msgpack
// payload. The tree rides inside the page list via EmbedTreeInPages.
func EncodeSnapshot(s types.Snapshot) ([]byte, error) {
	payload := snapshotPayload{
		Pages:   EmbedTreeInPages(s.Pages, s.Tree, true),
		Current: s.Current,
	}
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot rebuilds a snapshot from its msgpack payload. A payload
// without a usable embedded tree yields the default single-line tree for
// its page count.
func DecodeSnapshot(b []byte) (types.Snapshot, error) {
	var payload snapshotPayload
	if err := msgpack.Unmarshal(b, &payload); err != nil {
		return types.Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotDecode, err)
	}
	pages, t, ok := ExtractTreeFromPages(payload.Pages)
	if !ok {
		t = tree.NewFromPages(len(pages))
	}
	return types.Snapshot{Tree: t, Pages: pages, Current: payload.Current}, nil
}
