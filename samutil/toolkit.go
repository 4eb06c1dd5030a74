// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package samutil

import (
	"context"
	"fmt"
	"io"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
)

// Toolkit is the alignment-library capability this package is layered over.
// Implementations own all BAM and BAI binary-format handling.
type Toolkit interface {
	// Stats returns per-reference index statistics for the BAM file at path,
	// one line per reference sequence in header order, each splittable into
	// four whitespace-separated fields: name, length, mapped count, unmapped
	// count. A trailing "*" line reports reads with no position at all.
	Stats(ctx context.Context, path string) ([]string, error)

	// BuildIndex builds an index for the BAM file at path and writes it to
	// indexPath.
	BuildIndex(ctx context.Context, path, indexPath string) error

	// OpenRecords opens the BAM file at path for sequential record
	// iteration, starting at the first record.
	OpenRecords(ctx context.Context, path string) (RecordIterator, error)
}

// RecordIterator iterates over the records of a BAM file in file order.
// Thread compatible.
type RecordIterator interface {
	// Scan returns whether there are any records remaining, and if so,
	// advances the iterator to the next record.
	Scan() bool

	// Record returns the current record. This must be called only after a
	// call to Scan() returns true.
	Record() *sam.Record

	// Err returns the error encountered during iteration, or nil if no
	// error occurred. An io.EOF error is translated to nil.
	Err() error

	// Close must be called exactly once. It returns the value of Err().
	Close() error
}

// NewToolkit returns a Toolkit backed by github.com/grailbio/hts. Paths may
// be local filenames or S3 URLs.
func NewToolkit() Toolkit {
	return htsToolkit{}
}

type htsToolkit struct{}

func (htsToolkit) Stats(ctx context.Context, path string) ([]string, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer in.Close(ctx)
	br, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return nil, err
	}
	defer br.Close()

	indexIn, err := file.Open(ctx, ResolveIndex(ctx, path))
	if err != nil {
		return nil, err
	}
	defer indexIn.Close(ctx)
	idx, err := bam.ReadIndex(indexIn.Reader(ctx))
	if err != nil {
		return nil, err
	}

	header := br.Header()
	lines := make([]string, 0, len(header.Refs())+1)
	for _, ref := range header.Refs() {
		var mapped, unmapped uint64
		// References past the end of the index have no reads at all.
		if ref.ID() < idx.NumRefs() {
			if stats, ok := idx.ReferenceStats(ref.ID()); ok {
				mapped, unmapped = stats.Mapped, stats.Unmapped
			}
		}
		lines = append(lines, fmt.Sprintf("%s\t%d\t%d\t%d", ref.Name(), ref.Len(), mapped, unmapped))
	}
	var placeless uint64
	if n, ok := idx.Unmapped(); ok {
		placeless = n
	}
	lines = append(lines, fmt.Sprintf("*\t0\t0\t%d", placeless))
	return lines, nil
}

func (htsToolkit) BuildIndex(ctx context.Context, path, indexPath string) error {
	in, err := file.Open(ctx, path)
	if err != nil {
		return err
	}
	defer in.Close(ctx)
	// LastChunk is only meaningful with a single decompression goroutine.
	br, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		return err
	}
	defer br.Close()

	var idx bam.Index
	for {
		rec, err := br.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := idx.Add(rec, br.LastChunk()); err != nil {
			return err
		}
	}
	out, err := file.Create(ctx, indexPath)
	if err != nil {
		return err
	}
	if err := bam.WriteIndex(out.Writer(ctx), &idx); err != nil {
		out.Close(ctx) // nolint: errcheck
		return err
	}
	return out.Close(ctx)
}

func (htsToolkit) OpenRecords(ctx context.Context, path string) (RecordIterator, error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	br, err := bam.NewReader(in.Reader(ctx), 1)
	if err != nil {
		in.Close(ctx) // nolint: errcheck
		return nil, err
	}
	return &recordIterator{in: in, reader: br}, nil
}

type recordIterator struct {
	in     file.File
	reader *bam.Reader
	next   *sam.Record
	err    error
}

func (i *recordIterator) Scan() bool {
	if i.err != nil {
		return false
	}
	i.next, i.err = i.reader.Read()
	return i.err == nil
}

func (i *recordIterator) Record() *sam.Record {
	return i.next
}

func (i *recordIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

func (i *recordIterator) Close() error {
	err := i.Err()
	if i.reader != nil {
		if e := i.reader.Close(); e != nil && err == nil {
			err = e
		}
		i.reader = nil
	}
	if i.in != nil {
		if e := i.in.Close(vcontext.Background()); e != nil && err == nil {
			err = e
		}
		i.in = nil
	}
	return err
}
