// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package samutil

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
)

// DefaultSampleSize is the number of records IsSorted inspects when the
// caller passes a non-positive sample size.
const DefaultSampleSize = 50

// TotalMappedReads returns the total number of mapped reads in the BAM file
// at path, using its index statistics rather than scanning records. The file
// must already have a usable index; call EnsureIndex first if in doubt.
//
// A stats line that does not split into exactly four fields, or whose mapped
// count is not an integer, fails with kind errors.Invalid.
func TotalMappedReads(ctx context.Context, tools Toolkit, path string) (int64, error) {
	lines, err := tools.Stats(ctx, path)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return 0, errors.E(errors.Invalid, fmt.Sprintf("malformed index stats line %q", line))
		}
		mapped, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return 0, errors.E(errors.Invalid, fmt.Sprintf("malformed mapped count in index stats line %q", line), err)
		}
		total += mapped
	}
	return total, nil
}

// ResolveIndex returns the index filename for the BAM file at path. Like
// samtools, it looks for foo.bam.bai first and falls back to foo.bai whether
// or not the latter exists.
func ResolveIndex(ctx context.Context, path string) string {
	index := path + ".bai"
	if _, err := file.Stat(ctx, index); err == nil {
		return index
	}
	return path[:len(path)-1] + "i"
}

// EnsureIndex guarantees that a current index exists for the BAM file at
// path, invoking tools to rebuild it when missing or older than the BAM. A
// rebuilt index is always written as path+".bai". Returns the index filename.
//
// Fails with kind errors.NotExist when the rebuild step does not produce the
// expected file. Not safe for concurrent use on one file; callers must
// serialize writers themselves.
func EnsureIndex(ctx context.Context, tools Toolkit, path string) (string, error) {
	index := ResolveIndex(ctx, path)
	current, err := NewerOrEqual(ctx, index, path)
	if err != nil {
		return "", err
	}
	if current {
		return index, nil
	}
	log.Printf("indexing BAM file %s", path)
	index = path + ".bai"
	if err := tools.BuildIndex(ctx, path, index); err != nil {
		return "", err
	}
	if _, err := file.Stat(ctx, index); err != nil {
		return "", errors.E(errors.NotExist, fmt.Sprintf("failed to generate index %s", index), err)
	}
	return index, nil
}

// IsSorted reports whether the records of the BAM file at path look sorted,
// by inspecting only the first sampleSize records (DefaultSampleSize when
// non-positive). With byName set, consecutive query names must be
// non-decreasing, so read pairs sit adjacent; otherwise records on the same
// reference must have non-decreasing positions.
//
// An empty or single-record prefix is sorted. This is a heuristic: a file
// whose sampled prefix is ordered but whose tail is not still reports true.
func IsSorted(ctx context.Context, tools Toolkit, path string, byName bool, sampleSize int) (bool, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	outOfOrder := func(rec, prev *sam.Record) bool {
		return rec.Ref.ID() == prev.Ref.ID() && rec.Pos < prev.Pos
	}
	if byName {
		outOfOrder = func(rec, prev *sam.Record) bool {
			return prev.Name > rec.Name
		}
	}

	// TODO: probe again at 50% and ~99% of the file, not just the head.
	iter, err := tools.OpenRecords(ctx, path)
	if err != nil {
		return false, err
	}
	sorted := true
	var prev *sam.Record
	for n := 0; n < sampleSize && iter.Scan(); n++ {
		rec := iter.Record()
		if prev != nil && outOfOrder(rec, prev) {
			sorted = false
			break
		}
		prev = rec
	}
	if err := iter.Close(); err != nil {
		return false, err
	}
	return sorted, nil
}

// NewerOrEqual reports whether the file at target has a modification time no
// older than the file at reference. A target that cannot be statted counts as
// older; a stat failure on reference is returned as an error.
func NewerOrEqual(ctx context.Context, target, reference string) (bool, error) {
	targetInfo, err := file.Stat(ctx, target)
	if err != nil {
		return false, nil
	}
	refInfo, err := file.Stat(ctx, reference)
	if err != nil {
		return false, err
	}
	return !targetInfo.ModTime().Before(refInfo.ModTime()), nil
}
