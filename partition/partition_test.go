package partition

import (
	"encoding/binary"
	"testing"

	"github.com/moffa90/go-routerboot/cfgtag"
)

func image(magic uint32, tags ...[2]uint16) []byte {
	put := func(b []byte, v uint32) []byte {
		return binary.NativeEndian.AppendUint32(b, v)
	}

	img := put(nil, magic)
	if magic == cfgtag.MagicSoft {
		img = put(img, 0)
	}
	for _, tg := range tags {
		img = put(img, uint32(tg[0])|uint32(tg[1])<<16)
		img = append(img, make([]byte, tg[1])...)
	}
	return img
}

func scan(t *testing.T, img []byte) *cfgtag.Container {
	t.Helper()
	c, err := cfgtag.Scan(img)
	if err != nil {
		t.Fatalf("Scan() failed: %v", err)
	}
	return c
}

func TestDerive(t *testing.T) {
	hard := image(cfgtag.MagicHard, [2]uint16{0x04, 8}, [2]uint16{0x07, 4}, [2]uint16{0x16, 12})

	tests := []struct {
		name      string
		img       []byte
		nodes     []Node
		allTags   bool
		wantNames []string
		wantSizes []int
	}{
		{
			name:      "no nodes, matched only",
			img:       hard,
			wantNames: nil,
		},
		{
			name:      "no nodes, all tags",
			img:       hard,
			allTags:   true,
			wantNames: []string{"hard_tag_04", "hard_tag_07", "hard_tag_22"},
			wantSizes: []int{8, 4, 12},
		},
		{
			name:      "matched with size override",
			img:       hard,
			nodes:     []Node{{Name: "wlan", Address: 0x16, Size: 0x1000}, {Name: "mac", Address: 0x04}},
			wantNames: []string{"hard_tag_04", "hard_tag_22"},
			wantSizes: []int{8, 0x1000},
		},
		{
			name:      "zero address never matches",
			img:       hard,
			nodes:     []Node{{Name: "zero", Address: 0, Size: 16}},
			wantNames: nil,
		},
		{
			name:      "unknown address",
			img:       hard,
			nodes:     []Node{{Name: "missing", Address: 0x30}},
			wantNames: nil,
		},
		{
			name:      "soft naming",
			img:       image(cfgtag.MagicSoft, [2]uint16{0x01, 4}),
			allTags:   true,
			wantNames: []string{"soft_tag_01"},
			wantSizes: []int{4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parts := Derive(scan(t, tt.img), tt.nodes, WithAllTags(tt.allTags))

			if len(parts) != len(tt.wantNames) {
				t.Fatalf("got %d partitions, want %d: %+v", len(parts), len(tt.wantNames), parts)
			}
			for i, p := range parts {
				if p.Name != tt.wantNames[i] {
					t.Errorf("partition %d name = %q, want %q", i, p.Name, tt.wantNames[i])
				}
				if p.Size != tt.wantSizes[i] {
					t.Errorf("partition %d size = %d, want %d", i, p.Size, tt.wantSizes[i])
				}
			}
		})
	}
}

func TestDerive_Offsets(t *testing.T) {
	c := scan(t, image(cfgtag.MagicHard, [2]uint16{0x04, 8}, [2]uint16{0x0B, 4}))
	parts := Derive(c, nil, WithAllTags(true))

	if parts[0].Offset != 8 || parts[1].Offset != 20 {
		t.Errorf("offsets = %d, %d, want 8, 20", parts[0].Offset, parts[1].Offset)
	}
	if parts[0].Node != nil {
		t.Error("unmatched partition has a node")
	}
}

func TestDerive_NodeCopied(t *testing.T) {
	nodes := []Node{{Name: "mac", Address: 0x04}}
	c := scan(t, image(cfgtag.MagicHard, [2]uint16{0x04, 8}))

	parts := Derive(c, nodes)
	nodes[0].Name = "changed"

	if parts[0].Node == nil || parts[0].Node.Name != "mac" {
		t.Errorf("Node = %+v, want copy named mac", parts[0].Node)
	}
}

type warnCounter struct {
	cfgtag.NopLogger
	warns int
}

func (w *warnCounter) Warn(string, ...any) { w.warns++ }

func TestDerive_Duplicates(t *testing.T) {
	c := scan(t, image(cfgtag.MagicHard, [2]uint16{0x04, 8}, [2]uint16{0x04, 4}))
	logger := &warnCounter{}

	parts := Derive(c, nil, WithAllTags(true), WithLogger(logger))

	if len(parts) != 1 || parts[0].Size != 8 {
		t.Fatalf("expected first occurrence only, got %+v", parts)
	}
	if logger.warns != 1 {
		t.Errorf("warns = %d, want 1", logger.warns)
	}
}

func TestDerive_NilContainer(t *testing.T) {
	if parts := Derive(nil, []Node{{Address: 1}}, WithAllTags(true)); parts != nil {
		t.Errorf("Derive(nil) = %+v", parts)
	}
}
