// Package domain decodes MSG2 super-observation records from the ICOADS
// monthly summary product.
//
// # Data Source
//
// MSG2 files are produced by the International Comprehensive Ocean-Atmosphere
// Data Set (ICOADS) and distributed by NCAR RDA (dataset ds540.1). Each file is
// a flat sequence of fixed-width 64-byte binary records with no delimiters or
// length prefixes. One record summarises the marine observations that fell in
// a single box (a 1° or 2° latitude/longitude cell) during one month.
//
// # Record Layout
//
//	bytes  0-7   header: report identity, year, month, box size and position,
//	             platform ids, group code, checksum
//	bytes  8-55  six statistics blocks of 8 bytes each (s1, s3, s5, mean,
//	             number of observations, standard deviation); each block holds
//	             one big-endian uint16 per variable slot
//	bytes 56-63  four nibble-packed auxiliary blocks of 2 bytes each (mean
//	             day, mean hour fraction, x and y position within the box)
//
// All fields are unsigned. Bytes are widened to int before any shift so no
// sign extension can leak into the bit fields.
//
// # Groups
//
// The 4-bit group code in header byte 7 selects which four physical variables
// the record carries (see [LookupGroup]). Only groups 3, 4, 5, 6, 7 and 9 are
// defined; any other code yields a header-only record. Group 5 defines no
// variable for its second slot.
//
// # Missing Values
//
// Every decoded numeric field either holds a physical value or the in-band
// sentinel [Missing] (-9999). Out-of-range codes, zero-coded auxiliary fields
// and undefined position codes all map to the sentinel; decoding never fails
// for semantic reasons. The only error is [ErrShortBuffer], returned when
// fewer than [RecordSize] bytes are supplied.
//
// # Record IDs
//
// Record IDs are a truncated SHA-256 of the 64 raw bytes. Replaying the same
// file therefore produces the same IDs, which lets sinks upsert idempotently.
package domain
