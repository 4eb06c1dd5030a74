// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package samutil provides small conveniences around indexed BAM files:
// counting mapped reads from index statistics, keeping a .bai index current,
// and probing whether records are sorted. All binary-format work is delegated
// to github.com/grailbio/hts through the Toolkit capability, which can be
// faked in tests.
package samutil
