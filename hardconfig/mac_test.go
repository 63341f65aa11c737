package hardconfig

import (
	"errors"
	"strings"
	"testing"

	"github.com/moffa90/go-routerboot/cfgtag"
)

func TestDeriveMAC(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		count     uint32
		increment uint32
		want      string
		wantErr   error
	}{
		{"zero increment", "48:8f:5a:00:00:10", 5, 0, "48:8f:5a:00:00:10", nil},
		{"simple", "48:8f:5a:00:00:10", 5, 2, "48:8f:5a:00:00:12", nil},
		{"increment equals count", "48:8f:5a:00:00:10", 5, 5, "48:8f:5a:00:00:15", nil},
		{"carry", "48:8f:5a:00:00:ff", 2, 1, "48:8f:5a:00:01:00", nil},
		{"long carry", "48:8f:ff:ff:ff:ff", 2, 1, "48:90:00:00:00:00", nil},
		{"above count", "48:8f:5a:00:00:10", 5, 6, "", ErrMACRange},
		{"zero count", "48:8f:5a:00:00:10", 0, 0, "", ErrMACRange},
		{"multicast base", "01:00:5e:00:00:01", 5, 1, "", ErrInvalidMAC},
		{"zero base", "00:00:00:00:00:00", 5, 1, "", ErrInvalidMAC},
		{"result multicast", "fe:ff:ff:ff:ff:ff", 5, 1, "", ErrInvalidMAC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DeriveMAC(mac(tt.base), tt.count, tt.increment)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DeriveMAC() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DeriveMAC() unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("DeriveMAC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidMAC(t *testing.T) {
	if ValidMAC(mac("48:8f:5a:00:00:10")[:5]) {
		t.Error("short address accepted")
	}
	if !ValidMAC(mac("02:00:00:00:00:00")) {
		t.Error("locally administered address rejected")
	}
}

// errorCounter counts Error calls.
type errorCounter struct {
	cfgtag.NopLogger
	errors []string
}

func (l *errorCounter) Error(msg string, _ ...any) {
	l.errors = append(l.errors, msg)
}

func TestAssignMACs(t *testing.T) {
	logger := &errorCounter{}
	hc, err := Parse(fullImage(), WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}

	got, err := hc.AssignMACs([]Assignment{
		{Name: "ether1", Increment: 0},
		{Name: "wlan1", Increment: 2},
		{Name: "sfp1", Increment: 6},
	})
	if err != nil {
		t.Fatalf("AssignMACs() unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d assignments, want 2: %+v", len(got), got)
	}
	if got[1].Name != "wlan1" || got[1].Addr.String() != "48:8f:5a:00:00:12" {
		t.Errorf("second assignment = %+v", got[1])
	}
	if len(logger.errors) != 1 || !strings.Contains(logger.errors[0], "skipping") {
		t.Errorf("logged errors = %v", logger.errors)
	}
}

func TestAssignMACs_Failures(t *testing.T) {
	tests := []struct {
		name    string
		img     []byte
		wantErr error
	}{
		{
			name:    "no mac base",
			img:     hardImage(tag(cfgtag.IDMACAddressCount, u32(4))),
			wantErr: cfgtag.ErrNotFound,
		},
		{
			name: "multicast base",
			img: hardImage(
				tag(cfgtag.IDMACAddressPack, []byte{0x01, 0, 0x5E, 0, 0, 1, 0, 0}),
				tag(cfgtag.IDMACAddressCount, u32(4))),
			wantErr: ErrInvalidMAC,
		},
		{
			name: "zero count",
			img: hardImage(
				tag(cfgtag.IDMACAddressPack, macPack),
				tag(cfgtag.IDMACAddressCount, u32(0))),
			wantErr: ErrMACRange,
		},
		{
			name:    "no count",
			img:     hardImage(tag(cfgtag.IDMACAddressPack, macPack)),
			wantErr: cfgtag.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := mustParse(t, tt.img)
			_, err := hc.AssignMACs([]Assignment{{Name: "ether1"}})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AssignMACs() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
