// Package flash provides read access to the flash regions holding RouterBoot
// configuration.
//
// A region is anything implementing [Device]: an io.ReaderAt with a known
// size. *os.File from an MTD character device, *bytes.Reader and [Image]
// all qualify.
//
// # Sources
//
// [Open] loads an image file. Plain dumps are memory mapped read-only; dumps
// compressed with zstd or as LZ4 frames are detected by their frame magic and
// decompressed into memory, bounded by the configured maximum size:
//
//	img, err := flash.Open("hard_config.bin.zst")
//	if err != nil {
//	    return err
//	}
//	defer img.Close()
//
// [OpenMTD] resolves a partition name through /proc/mtd:
//
//	part, err := flash.OpenMTD("hard_config")
//
// # Reading
//
// [ReadAll] copies a whole region in chunks, honouring context cancellation.
// Any short read is an *IOError; callers must not parse partial regions.
//
//	buf, err := flash.ReadAll(ctx, part,
//	    flash.WithProgressCallback(func(p flash.Progress) {
//	        fmt.Printf("%.0f%%\n", p.Percentage)
//	    }),
//	)
package flash
