package flash

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Locations of the MTD partition table and device nodes.
var (
	procMTD = "/proc/mtd"
	devDir  = "/dev"
)

// MTDPartition is one line of /proc/mtd.
type MTDPartition struct {
	// Device is the device name, e.g. "mtd1"
	Device string

	// Size is the partition size in bytes
	Size int64

	// EraseSize is the erase block size in bytes
	EraseSize int64

	// Name is the partition label, e.g. "hard_config"
	Name string
}

// ParseMTDTable parses the /proc/mtd format:
//
//	dev:    size   erasesize  name
//	mtd0: 00040000 00001000 "RouterBoot"
//	mtd1: 00001000 00001000 "hard_config"
func ParseMTDTable(r io.Reader) ([]MTDPartition, error) {
	var parts []MTDPartition

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "dev:") {
			continue
		}

		q := strings.IndexByte(line, '"')
		if q < 0 {
			return nil, fmt.Errorf("line %d: missing partition name", lineNum)
		}
		name, err := strconv.Unquote(line[q:])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid partition name: %w", lineNum, err)
		}

		fields := strings.Fields(line[:q])
		if len(fields) != 3 || !strings.HasSuffix(fields[0], ":") {
			return nil, fmt.Errorf("line %d: expected 'dev: size erasesize \"name\"'", lineNum)
		}

		size, err := strconv.ParseInt(fields[1], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid size: %w", lineNum, err)
		}
		erase, err := strconv.ParseInt(fields[2], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid erase size: %w", lineNum, err)
		}

		parts = append(parts, MTDPartition{
			Device:    strings.TrimSuffix(fields[0], ":"),
			Size:      size,
			EraseSize: erase,
			Name:      name,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mtd table: %w", err)
	}

	return parts, nil
}

// FindMTD returns the first partition labelled name.
func FindMTD(parts []MTDPartition, name string) (MTDPartition, error) {
	for _, p := range parts {
		if p.Name == name {
			return p, nil
		}
	}
	return MTDPartition{}, fmt.Errorf("%w: %q", ErrNoPartition, name)
}

// MTD is an open MTD character device. It implements Device.
type MTD struct {
	// Partition describes the opened partition
	Partition MTDPartition

	file *os.File
}

// OpenMTD opens the MTD partition labelled name read-only.
//
// Example:
//
//	part, err := flash.OpenMTD("hard_config")
//	if err != nil {
//	    return err
//	}
//	defer part.Close()
func OpenMTD(name string) (*MTD, error) {
	table, err := os.Open(procMTD)
	if err != nil {
		return nil, &IOError{Op: "open", Err: err}
	}
	defer table.Close()

	parts, err := ParseMTDTable(table)
	if err != nil {
		return nil, err
	}
	part, err := FindMTD(parts, name)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(devDir, part.Device))
	if err != nil {
		return nil, &IOError{Op: "open", Err: err}
	}

	return &MTD{Partition: part, file: file}, nil
}

// Size returns the partition size from the MTD table.
func (m *MTD) Size() int64 {
	return m.Partition.Size
}

// ReadAt implements io.ReaderAt.
func (m *MTD) ReadAt(p []byte, off int64) (int, error) {
	return m.file.ReadAt(p, off)
}

// Close closes the device.
func (m *MTD) Close() error {
	return m.file.Close()
}
