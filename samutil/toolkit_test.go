// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package samutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBAM(t *testing.T, path string, recs []*sam.Record) {
	out, err := os.Create(path)
	require.NoError(t, err)
	bw, err := bam.NewWriter(out, header, 1)
	require.NoError(t, err)
	for _, rec := range recs {
		require.NoError(t, bw.Write(rec))
	}
	require.NoError(t, bw.Close())
	require.NoError(t, out.Close())
}

func TestToolkitRoundTrip(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	tools := NewToolkit()

	bamPath := filepath.Join(tempDir, "test.bam")
	writeBAM(t, bamPath, []*sam.Record{
		newRecord("readA", chr1, 10),
		newRecord("readA", chr1, 20),
		newRecord("readB", chr2, 5),
	})

	index, err := EnsureIndex(ctx, tools, bamPath)
	require.NoError(t, err)
	assert.Equal(t, bamPath+".bai", index)
	_, err = os.Stat(index)
	require.NoError(t, err)

	lines, err := tools.Stats(ctx, bamPath)
	require.NoError(t, err)
	require.Equal(t, 3, len(lines))
	assert.Equal(t, "chr1\t1000\t2\t0", lines[0])
	assert.Equal(t, "chr2\t2000\t1\t0", lines[1])
	assert.Equal(t, "*\t0\t0\t0", lines[2])

	n, err := TotalMappedReads(ctx, tools, bamPath)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	sorted, err := IsSorted(ctx, tools, bamPath, false, 0)
	require.NoError(t, err)
	assert.True(t, sorted)
	sorted, err = IsSorted(ctx, tools, bamPath, true, 0)
	require.NoError(t, err)
	assert.True(t, sorted)
}

func TestToolkitUnsorted(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	tools := NewToolkit()

	bamPath := filepath.Join(tempDir, "unsorted.bam")
	writeBAM(t, bamPath, []*sam.Record{
		newRecord("readB", chr1, 50),
		newRecord("readA", chr1, 10),
	})

	sorted, err := IsSorted(ctx, tools, bamPath, false, 0)
	require.NoError(t, err)
	assert.False(t, sorted)
	sorted, err = IsSorted(ctx, tools, bamPath, true, 0)
	require.NoError(t, err)
	assert.False(t, sorted)
}

func TestToolkitEmptyBAM(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	ctx := context.Background()
	tools := NewToolkit()

	bamPath := filepath.Join(tempDir, "empty.bam")
	writeBAM(t, bamPath, nil)

	require.NoError(t, tools.BuildIndex(ctx, bamPath, bamPath+".bai"))
	n, err := TotalMappedReads(ctx, tools, bamPath)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	sorted, err := IsSorted(ctx, tools, bamPath, false, 0)
	require.NoError(t, err)
	assert.True(t, sorted)
}
