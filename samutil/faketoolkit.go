// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package samutil

import (
	"context"

	"github.com/grailbio/base/file"
	"github.com/grailbio/hts/sam"
)

// FakeToolkit is only for unittests. It serves canned stats lines and
// records, and by default writes a stub file when asked to build an index.
type FakeToolkit struct {
	StatsLines []string
	Records    []*sam.Record

	// Build, if non-nil, replaces the default index-build behavior.
	Build func(ctx context.Context, path, indexPath string) error
	// BuildCalls counts BuildIndex invocations.
	BuildCalls int
}

var _ Toolkit = (*FakeToolkit)(nil)

// Stats implements the Toolkit interface. It returns the lines passed in
// StatsLines.
func (f *FakeToolkit) Stats(ctx context.Context, path string) ([]string, error) {
	return f.StatsLines, nil
}

// BuildIndex implements the Toolkit interface.
func (f *FakeToolkit) BuildIndex(ctx context.Context, path, indexPath string) error {
	f.BuildCalls++
	if f.Build != nil {
		return f.Build(ctx, path, indexPath)
	}
	out, err := file.Create(ctx, indexPath)
	if err != nil {
		return err
	}
	if _, err := out.Writer(ctx).Write([]byte("stub index")); err != nil {
		out.Close(ctx) // nolint: errcheck
		return err
	}
	return out.Close(ctx)
}

// OpenRecords implements the Toolkit interface. It yields the records passed
// in Records.
func (f *FakeToolkit) OpenRecords(ctx context.Context, path string) (RecordIterator, error) {
	return &fakeIterator{recs: f.Records}, nil
}

type fakeIterator struct {
	recs []*sam.Record
	rec  *sam.Record
}

func (i *fakeIterator) Scan() bool {
	if len(i.recs) == 0 {
		return false
	}
	i.rec = i.recs[0]
	i.recs = i.recs[1:]
	return true
}

func (i *fakeIterator) Record() *sam.Record { return i.rec }

func (i *fakeIterator) Err() error { return nil }

func (i *fakeIterator) Close() error { return nil }
