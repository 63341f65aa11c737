package report

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"github.com/moffa90/go-routerboot/cfgtag"
	"github.com/moffa90/go-routerboot/hardconfig"
	"github.com/moffa90/go-routerboot/partition"
)

func u32(v uint32) []byte {
	return binary.NativeEndian.AppendUint32(nil, v)
}

func tag(id uint16, payload []byte) []byte {
	return append(u32(uint32(id)|uint32(len(payload))<<16), payload...)
}

func testImage() []byte {
	img := u32(cfgtag.MagicHard)
	img = append(img, tag(cfgtag.IDMACAddressPack, []byte{0x48, 0x8F, 0x5A, 0, 0, 0x10, 0, 0})...)
	img = append(img, tag(cfgtag.IDSerialNumber, []byte("SN42\x00\x00\x00\x00"))...)
	img = append(img, tag(cfgtag.IDMACAddressCount, u32(4))...)
	img = append(img, tag(cfgtag.IDHWOptions, u32(hardconfig.HWHasUSB))...)
	img = append(img, tag(cfgtag.IDWLANData, []byte{0x04, 0x5A, 0x02, 0x00})...)
	return img
}

// calDecoded is the RLE payload above, decoded.
var calDecoded = []byte{0x5A, 0x5A, 0x5A, 0x5A, 0x00, 0x00}

func buildReport(t *testing.T) *Report {
	t.Helper()
	img := testImage()

	c, err := cfgtag.Scan(img)
	if err != nil {
		t.Fatal(err)
	}
	hc, err := hardconfig.Parse(img)
	if err != nil {
		t.Fatal(err)
	}
	macs, err := hc.AssignMACs([]hardconfig.Assignment{{Name: "ether1", Increment: 1}})
	if err != nil {
		t.Fatal(err)
	}

	return Build(Inputs{
		Source:     "test.bin",
		Container:  c,
		HardConfig: hc,
		Partitions: partition.Derive(c, []partition.Node{{Name: "wlan", Address: 0x16}}),
		MACs:       macs,
	})
}

func TestBuild(t *testing.T) {
	r := buildReport(t)

	if r.Variant != "hard" || len(r.Tags) != 5 {
		t.Fatalf("report = %+v", r)
	}
	if r.Tags[1].Name != "hard_tag_11" || r.Tags[1].Offset != 20 {
		t.Errorf("Tags[1] = %+v", r.Tags[1])
	}
	if r.End.Reason != cfgtag.StopEndOfBuffer.String() {
		t.Errorf("End = %+v", r.End)
	}

	values := make(map[string]string)
	for _, f := range r.Fields {
		values[f.Name] = f.Value
	}
	want := map[string]string{
		"mac_base":     "48:8f:5a:00:00:10",
		"board_serial": "SN42",
		"mac_count":    "0x00000004",
		"hw_options":   "0x00000004",
	}
	for name, v := range want {
		if values[name] != v {
			t.Errorf("field %s = %q, want %q", name, values[name], v)
		}
	}
	if _, ok := values["wlan_data"]; ok {
		t.Error("calibration listed as a formatted field")
	}

	if !r.HWOptions["has usb"] || r.HWOptions["has WiFi"] {
		t.Errorf("HWOptions = %v", r.HWOptions)
	}

	if len(r.Calibrations) != 1 {
		t.Fatalf("Calibrations = %+v", r.Calibrations)
	}
	sum := blake3.Sum256(calDecoded)
	cal := r.Calibrations[0]
	if cal.Name != "wlan_data" || cal.Format != "raw" || cal.Size != len(calDecoded) || cal.BLAKE3 != hex.EncodeToString(sum[:]) {
		t.Errorf("Calibration = %+v", cal)
	}

	if len(r.Partitions) != 1 || r.Partitions[0].Name != "hard_tag_22" {
		t.Errorf("Partitions = %+v", r.Partitions)
	}
	if len(r.MACs) != 1 || r.MACs[0].Addr != "48:8f:5a:00:00:11" {
		t.Errorf("MACs = %+v", r.MACs)
	}
}

func TestBuild_SoftContainer(t *testing.T) {
	img := append(u32(cfgtag.MagicSoft), u32(0)...)
	img = append(img, tag(0x01, u32(7))...)

	c, err := cfgtag.Scan(img)
	if err != nil {
		t.Fatal(err)
	}
	r := Build(Inputs{Source: "soft", Container: c})

	if r.Variant != "soft" || len(r.Tags) != 1 || r.Fields != nil || r.Calibrations != nil {
		t.Errorf("report = %+v", r)
	}
}

func TestBuild_MalformedHWOptions(t *testing.T) {
	img := u32(cfgtag.MagicHard)
	img = append(img, tag(cfgtag.IDSerialNumber, []byte("SN42"))...)
	img = append(img, tag(cfgtag.IDHWOptions, []byte{0x04, 0x00})...)

	c, err := cfgtag.Scan(img)
	if err != nil {
		t.Fatal(err)
	}
	hc, err := hardconfig.Parse(img)
	if err != nil {
		t.Fatal(err)
	}
	r := Build(Inputs{Source: "short", Container: c, HardConfig: hc})

	var hw *Field
	for i := range r.Fields {
		if r.Fields[i].Name == "hw_options" {
			hw = &r.Fields[i]
		}
	}
	if hw == nil {
		t.Fatalf("hw_options missing from %+v", r.Fields)
	}
	if hw.Value != "" || !strings.Contains(hw.Error, "expected 4 bytes") {
		t.Errorf("hw_options field = %+v", *hw)
	}
	if r.HWOptions != nil {
		t.Errorf("HWOptions = %v, want nil", r.HWOptions)
	}
}

func TestWrite_JSON(t *testing.T) {
	r := buildReport(t)

	var buf bytes.Buffer
	if err := Write(&buf, r, FormatJSON); err != nil {
		t.Fatal(err)
	}

	var got Report
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Source != "test.bin" || len(got.Tags) != len(r.Tags) {
		t.Errorf("decoded = %+v", got)
	}
	if !strings.Contains(buf.String(), `"blake3": "`) {
		t.Error("JSON output lacks calibration digest")
	}
}

func TestWrite_CBOR(t *testing.T) {
	r := buildReport(t)

	var a, b bytes.Buffer
	if err := Write(&a, r, FormatCBOR); err != nil {
		t.Fatal(err)
	}
	if err := Write(&b, buildReport(t), FormatCBOR); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("CBOR encoding is not deterministic")
	}

	var got Report
	if err := cbor.Unmarshal(a.Bytes(), &got); err != nil {
		t.Fatalf("invalid CBOR: %v", err)
	}
	if got.Variant != "hard" || len(got.Calibrations) != 1 || got.Calibrations[0].BLAKE3 != r.Calibrations[0].BLAKE3 {
		t.Errorf("decoded = %+v", got)
	}
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, buildReport(t), FormatText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"variant:",
		"hard_tag_04",
		"FIELD",
		"board_serial",
		"CALIBRATION",
		"PARTITION",
		"ether1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"cbor", FormatCBOR, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
