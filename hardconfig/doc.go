// Package hardconfig decodes the factory "hard_config" flash partition of
// MikroTik RouterBOARDs.
//
// The partition is a Hard tag container (see package cfgtag) holding board
// identity, MAC addresses, hardware option bits and WLAN calibration data.
// Known tags are published as named fields:
//
//	flash_info          u32s
//	mac_base            mac
//	board_product_code  string
//	booter_version      string
//	board_serial        string
//	mem_size            u32s
//	mac_count           u32s
//	hw_options          hwoptions
//	board_identifier    string
//	product_name        string
//	defconf             string
//	board_revision      string
//
// WLAN calibration is published either as a single "wlan_data" blob (older
// boards, one calibration ID) or as "wlan_data/data_0" and "wlan_data/data_2"
// (one blob per radio).
//
// # Usage
//
//	part, err := flash.OpenMTD("hard_config")
//	if err != nil {
//	    return err
//	}
//	defer part.Close()
//
//	hc, err := hardconfig.Load(ctx, part, hardconfig.WithLogger(slog.Default()))
//	if err != nil {
//	    return err
//	}
//
//	serial, _ := hc.Show("board_serial")
//	fmt.Print(serial)
//
//	cal, err := hc.CalibrationData("wlan_data")
//
// # Concurrency
//
// A loaded HardConfig is immutable and safe for concurrent use. Calibration
// data is decoded afresh on every CalibrationData call into a buffer owned by
// the caller; nothing is cached.
package hardconfig
